package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrInvalidParams      = fmt.Errorf("invalid parameters")
	ErrAdapterNotFound    = fmt.Errorf("adapter not found")
	ErrFeatureUnsupported = fmt.Errorf("feature not supported by adapter")
	ErrDocumentInvalid    = fmt.Errorf("invalid canonical document")
	ErrReadFailed         = fmt.Errorf("read failed")
	ErrWriteFailed        = fmt.Errorf("write failed")
	ErrBundleInvalid      = fmt.Errorf("invalid bundle")
	ErrManifestLoad       = fmt.Errorf("failed to load adapter manifest")
	ErrCommandFailed      = fmt.Errorf("adapter command failed")
	ErrDuplicateAdapter   = fmt.Errorf("adapter already registered")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "read_from_file")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category. It is the <kind> prefix of
// every error string emitted on the wire.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code; PARSE_ERROR and
// INTERNAL belong to the transport tier, which reports failures that never
// reached a handler.
const (
	CodeUnknown            ErrorCode = "UNKNOWN"
	CodeInvalidParams      ErrorCode = "INVALID_PARAMS"
	CodeAdapterNotFound    ErrorCode = "ADAPTER_NOT_FOUND"
	CodeFeatureUnsupported ErrorCode = "FEATURE_UNSUPPORTED"
	CodeDocumentInvalid    ErrorCode = "INVALID_DOCUMENT"
	CodeReadFailed         ErrorCode = "READ_FAILED"
	CodeWriteFailed        ErrorCode = "WRITE_FAILED"
	CodeBundleInvalid      ErrorCode = "INVALID_BUNDLE"
	CodeManifestLoad       ErrorCode = "MANIFEST_LOAD"
	CodeCommandFailed      ErrorCode = "COMMAND_FAILED"
	CodeDuplicateAdapter   ErrorCode = "DUPLICATE_ADAPTER"
	CodeParseError         ErrorCode = "PARSE_ERROR"
	CodeInternal           ErrorCode = "INTERNAL"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidParams:      CodeInvalidParams,
	ErrAdapterNotFound:    CodeAdapterNotFound,
	ErrFeatureUnsupported: CodeFeatureUnsupported,
	ErrDocumentInvalid:    CodeDocumentInvalid,
	ErrReadFailed:         CodeReadFailed,
	ErrWriteFailed:        CodeWriteFailed,
	ErrBundleInvalid:      CodeBundleInvalid,
	ErrManifestLoad:       CodeManifestLoad,
	ErrCommandFailed:      CodeCommandFailed,
	ErrDuplicateAdapter:   CodeDuplicateAdapter,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	// Unwrap DomainError to check its inner sentinel.
	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	// Walk the error chain with errors.Is.
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
