package gateway

import "encoding/json"

// Request is the envelope parsed from one line on the worker's stdin. ID is
// kept raw so the response can echo it verbatim whatever JSON type the caller
// chose; Params stays raw until the method's handler decodes it.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is the envelope written as one line on the worker's stdout. All
// three keys are always present: a nil ID encodes as null, and exactly one of
// Result and Error carries the outcome.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result"`
	Error  *string         `json:"error"`
}

func successResponse(id json.RawMessage, result any) Response {
	return Response{ID: id, Result: result}
}

func errorResponse(id json.RawMessage, msg string) Response {
	return Response{ID: id, Error: &msg}
}
