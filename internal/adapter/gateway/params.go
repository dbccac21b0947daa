package gateway

import (
	"encoding/json"
	"fmt"

	"reelbridge/internal/domain"
)

// Per-method parameter shapes. Each is decoded strictly from the request's
// params object so a wrong-typed field surfaces as INVALID_PARAMS instead of
// being silently coerced. Args is forwarded verbatim to the adapter.

type readFromFileParams struct {
	Filepath string         `json:"filepath"`
	Adapter  string         `json:"adapter"`
	Args     map[string]any `json:"args"`
}

type readFromStringParams struct {
	Data    string         `json:"data"`
	Adapter string         `json:"adapter"`
	Args    map[string]any `json:"args"`
}

type writeToFileParams struct {
	Data     string         `json:"data"`
	Filepath string         `json:"filepath"`
	Adapter  string         `json:"adapter"`
	Args     map[string]any `json:"args"`
}

type writeToStringParams struct {
	Data    string         `json:"data"`
	Adapter string         `json:"adapter"`
	Args    map[string]any `json:"args"`
}

func decodeParams(op string, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.NewDomainError(op, domain.ErrInvalidParams, err.Error())
	}
	return nil
}

func requireParam(op, key, value string) error {
	if value == "" {
		return domain.NewDomainError(op, domain.ErrInvalidParams,
			fmt.Sprintf("missing required parameter %q", key))
	}
	return nil
}
