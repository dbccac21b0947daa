package format

import (
	"context"
	"os"

	"reelbridge/internal/domain"
)

// CanonicalName is the adapter name of the native interchange format.
const CanonicalName = "reel_json"

// CanonicalSuffix is the file suffix claimed by the native format.
const CanonicalSuffix = "reel"

// JSONAdapter is the identity adapter for the canonical interchange format.
// Reads validate and compact; file writes store the document indented with a
// trailing newline.
type JSONAdapter struct{}

// NewJSONAdapter creates the canonical format adapter.
func NewJSONAdapter() *JSONAdapter { return &JSONAdapter{} }

func (a *JSONAdapter) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:     CanonicalName,
		Suffixes: []string{CanonicalSuffix},
	}
}

func (a *JSONAdapter) ReadFile(ctx context.Context, path string, args map[string]any) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", domain.NewDomainError("read_from_file", domain.ErrReadFailed, err.Error())
	}
	return domain.CompactDocument(string(raw))
}

func (a *JSONAdapter) ReadString(ctx context.Context, data string, args map[string]any) (string, error) {
	return domain.CompactDocument(data)
}

func (a *JSONAdapter) WriteFile(ctx context.Context, doc, path string, args map[string]any) error {
	out, err := domain.IndentDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
		return domain.NewDomainError("write_to_file", domain.ErrWriteFailed, err.Error())
	}
	return nil
}

func (a *JSONAdapter) WriteString(ctx context.Context, doc string, args map[string]any) (string, error) {
	return domain.CompactDocument(doc)
}

var (
	_ domain.Adapter      = (*JSONAdapter)(nil)
	_ domain.FileReader   = (*JSONAdapter)(nil)
	_ domain.StringReader = (*JSONAdapter)(nil)
	_ domain.FileWriter   = (*JSONAdapter)(nil)
	_ domain.StringWriter = (*JSONAdapter)(nil)
)
