package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// schemaField is the required top-level field of every canonical document.
const schemaField = "schema"

// ValidateDocument checks that data is a canonical interchange document: a
// JSON object whose "schema" field is a non-empty string. The document's
// remaining content is opaque to the bridge.
func ValidateDocument(data string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return NewDomainError("validate", ErrDocumentInvalid, fmt.Sprintf("not a JSON object: %v", err))
	}
	raw, ok := fields[schemaField]
	if !ok {
		return NewDomainError("validate", ErrDocumentInvalid, `missing "schema" field`)
	}
	var schema string
	if err := json.Unmarshal(raw, &schema); err != nil {
		return NewDomainError("validate", ErrDocumentInvalid, `"schema" is not a string`)
	}
	if schema == "" {
		return NewDomainError("validate", ErrDocumentInvalid, `"schema" is empty`)
	}
	return nil
}

// CompactDocument validates data and returns it in canonical compact form,
// the representation passed across the bridge boundary. Operating on the raw
// bytes keeps number formatting untouched.
func CompactDocument(data string) (string, error) {
	if err := ValidateDocument(data); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(data)); err != nil {
		return "", NewDomainError("compact", ErrDocumentInvalid, err.Error())
	}
	return buf.String(), nil
}

// IndentDocument validates data and returns it indented with four spaces, the
// on-disk form used for file output and bundle content.
func IndentDocument(data string) (string, error) {
	if err := ValidateDocument(data); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(data), "", "    "); err != nil {
		return "", NewDomainError("indent", ErrDocumentInvalid, err.Error())
	}
	return buf.String(), nil
}
