package bridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for the bridge transport. A wrapped ErrWorkerNotAvailable
// means the worker process or its streams are gone (or the circuit is open);
// ErrBridgeClosed means Close was already called.
var (
	ErrWorkerNotAvailable = errors.New("worker not available")
	ErrBridgeClosed       = errors.New("bridge closed")
	ErrFormatNotFound     = errors.New("format not found")
)

// RemoteError is an application-tier failure the worker reported for one
// request. Message carries the worker's error string verbatim, including its
// machine-parseable "<KIND>: " prefix.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}
