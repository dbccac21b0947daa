// Package gateway implements the line-delimited request/response protocol
// spoken over the worker's standard streams: one JSON request per line in,
// one JSON response per line out, in arrival order, flushed per line. A bad
// request never stops the loop; only end of input does.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"reelbridge/internal/domain"
	"reelbridge/internal/infra/tracer"
)

// ConversionService is the slice of the conversion use case the protocol
// handlers call into.
type ConversionService interface {
	Adapters(ctx context.Context) ([]domain.AdapterInfo, error)
	ReadFile(ctx context.Context, path, name string, args map[string]any) (string, error)
	ReadString(ctx context.Context, data, name string, args map[string]any) (string, error)
	WriteFile(ctx context.Context, data, path, name string, args map[string]any) error
	WriteString(ctx context.Context, data, name string, args map[string]any) (string, error)
}

// rpcHandler executes one method against its still-raw params.
type rpcHandler func(ctx context.Context, params json.RawMessage) (any, error)

// emptyParams is what a request without a params key is treated as.
var emptyParams = json.RawMessage("{}")

// Server owns the protocol loop and the fixed method table. It processes
// requests strictly one at a time; responses leave in the order requests
// arrived.
type Server struct {
	service  ConversionService
	logger   *slog.Logger
	handlers map[string]rpcHandler
}

// NewServer builds a server with the six protocol methods wired to svc.
func NewServer(svc ConversionService, logger *slog.Logger) *Server {
	s := &Server{service: svc, logger: logger}
	s.handlers = map[string]rpcHandler{
		"ping":             s.handlePing,
		"discover":         s.handleDiscover,
		"read_from_file":   s.handleReadFromFile,
		"read_from_string": s.handleReadFromString,
		"write_to_file":    s.handleWriteToFile,
		"write_to_string":  s.handleWriteToString,
	}
	return s
}

// Serve reads requests from r until end of stream and writes one response
// line per non-blank request line to w, flushing after each. Blank lines are
// skipped without a response. The returned error reports a broken stream,
// never a failed request.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for {
		line, readErr := in.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			resp := s.handleLine(ctx, []byte(trimmed))
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("flush response: %w", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", readErr)
		}
	}
}

// handleLine turns one non-blank input line into the response for it.
func (s *Server) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		// On a type mismatch the decoder still fills the fields it could,
		// so a well-formed id is echoed even when the envelope is junk.
		return s.transportFailure(req.ID, domain.CodeParseError, err)
	}
	return s.dispatch(ctx, req)
}

// dispatch looks up the method and runs its handler. Handler errors become
// application-tier responses; a panic is downgraded to an internal
// transport-tier response so the loop survives it.
func (s *Server) dispatch(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = s.transportFailure(req.ID, domain.CodeInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	handler, ok := s.handlers[req.Method]
	if !ok {
		s.logger.Debug("unknown method", "method", req.Method)
		return errorResponse(req.ID, "unknown method: "+req.Method)
	}

	params := req.Params
	if len(params) == 0 {
		params = emptyParams
	}

	ctx, span := tracer.StartSpan(ctx, "rpc.dispatch",
		trace.WithAttributes(tracer.StringAttr("rpc.method", req.Method)),
	)
	defer span.End()

	start := time.Now()
	result, err := handler(ctx, params)
	if err != nil {
		tracer.RecordError(span, err)
		s.logger.Debug("request failed", "method", req.Method, "duration", time.Since(start), "error", err)
		return errorResponse(req.ID, fmt.Sprintf("%s: %s", domain.ErrorCodeOf(err), err))
	}
	tracer.SetOK(span)
	s.logger.Debug("request handled", "method", req.Method, "duration", time.Since(start))
	return successResponse(req.ID, result)
}

// transportFailure builds the response for a request that never reached a
// handler: id as recovered (null when not), error carrying code, message and
// stack for diagnosis.
func (s *Server) transportFailure(id json.RawMessage, code domain.ErrorCode, err error) Response {
	s.logger.Warn("request failed before dispatch", "code", string(code), "error", err)
	return errorResponse(id, fmt.Sprintf("%s: %s\n%s", code, err, debug.Stack()))
}

// --- method handlers ---

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (any, error) {
	return "pong", nil
}

func (s *Server) handleDiscover(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.service.Adapters(ctx)
}

func (s *Server) handleReadFromFile(ctx context.Context, raw json.RawMessage) (any, error) {
	const op = "read_from_file"
	var p readFromFileParams
	if err := decodeParams(op, raw, &p); err != nil {
		return nil, err
	}
	if err := requireParam(op, "filepath", p.Filepath); err != nil {
		return nil, err
	}
	return s.service.ReadFile(ctx, p.Filepath, p.Adapter, p.Args)
}

func (s *Server) handleReadFromString(ctx context.Context, raw json.RawMessage) (any, error) {
	const op = "read_from_string"
	var p readFromStringParams
	if err := decodeParams(op, raw, &p); err != nil {
		return nil, err
	}
	if err := requireParam(op, "data", p.Data); err != nil {
		return nil, err
	}
	if err := requireParam(op, "adapter", p.Adapter); err != nil {
		return nil, err
	}
	return s.service.ReadString(ctx, p.Data, p.Adapter, p.Args)
}

func (s *Server) handleWriteToFile(ctx context.Context, raw json.RawMessage) (any, error) {
	const op = "write_to_file"
	var p writeToFileParams
	if err := decodeParams(op, raw, &p); err != nil {
		return nil, err
	}
	if err := requireParam(op, "data", p.Data); err != nil {
		return nil, err
	}
	if err := requireParam(op, "filepath", p.Filepath); err != nil {
		return nil, err
	}
	if err := s.service.WriteFile(ctx, p.Data, p.Filepath, p.Adapter, p.Args); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleWriteToString(ctx context.Context, raw json.RawMessage) (any, error) {
	const op = "write_to_string"
	var p writeToStringParams
	if err := decodeParams(op, raw, &p); err != nil {
		return nil, err
	}
	if err := requireParam(op, "data", p.Data); err != nil {
		return nil, err
	}
	if err := requireParam(op, "adapter", p.Adapter); err != nil {
		return nil, err
	}
	return s.service.WriteString(ctx, p.Data, p.Adapter, p.Args)
}
