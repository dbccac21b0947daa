// Package bridge provides a client for the reelworker conversion protocol.
//
// A Bridge spawns one worker process, speaks the line-delimited JSON
// request/response protocol over its standard streams, and exposes the
// worker's operations as plain method calls. Calls are serialized: the worker
// answers strictly in arrival order, so one request is in flight at a time.
//
// Example:
//
//	b, err := bridge.New(
//	    bridge.WithWorkerPath("./bin/reelworker"),
//	    bridge.WithAdapterManifest("adapters.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//	doc, err := b.ReadFile(ctx, "cut.reel", "", nil)
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sony/gobreaker/v2"
)

const (
	// defaultWorkerName is looked up on PATH when no explicit path is given.
	defaultWorkerName = "reelworker"

	// manifestEnv hands the worker a command adapter manifest.
	manifestEnv = "REELBRIDGE_ADAPTER_MANIFEST"

	// stderrCapBytes bounds how much worker stderr is retained for
	// diagnostics.
	stderrCapBytes = 64 * 1024

	// maxResponseBytes bounds a single response line; canonical documents
	// travel inline as JSON strings, so lines can get large.
	maxResponseBytes = 64 << 20

	// shutdownWait is how long Close waits for the worker to exit after
	// closing its stdin before killing it.
	shutdownWait = 3 * time.Second
)

// FormatFeatures reports what an adapter can do.
type FormatFeatures struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// Format describes one adapter reported by the worker's discover call.
type Format struct {
	Name     string         `json:"name"`
	Suffixes []string       `json:"suffixes"`
	Features FormatFeatures `json:"features"`
}

// request is the client side of the wire envelope.
type request struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// response is the worker's reply envelope.
type response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// callParams covers the parameter shapes of all four conversion methods;
// omitempty keeps each request to exactly the keys its method uses.
type callParams struct {
	Filepath string         `json:"filepath,omitempty"`
	Data     string         `json:"data,omitempty"`
	Adapter  string         `json:"adapter,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
}

// Bridge is a handle on one worker process.
type Bridge struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	stderr  *ringBuffer
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
	logger  *slog.Logger
	session string
	nextID  uint64
	order   []string
	byKey   map[string]Format
	closed  bool

	workerPath         string
	manifest           string
	extraEnv           []string
	breakerMaxFailures uint32
	breakerTimeout     time.Duration
}

// New spawns a worker, verifies it answers ping, and loads its format table
// via discover. The worker is killed again if the handshake fails.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		logger:  slog.Default(),
		session: newSessionID(),
		stderr:  newRingBuffer(stderrCapBytes),
		nextID:  1,
		byKey:   make(map[string]Format),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("session", b.session)
	b.breaker = newTransportBreaker(b.breakerMaxFailures, b.breakerTimeout, b.logger)

	if err := b.start(); err != nil {
		return nil, err
	}
	if err := b.handshake(context.Background()); err != nil {
		b.kill()
		return nil, err
	}
	return b, nil
}

// start spawns the worker with no arguments and wires its streams.
func (b *Bridge) start() error {
	path := b.workerPath
	if path == "" {
		found, err := exec.LookPath(defaultWorkerName)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWorkerNotAvailable, err)
		}
		path = found
	}

	cmd := exec.Command(path)
	cmd.Env = os.Environ()
	if b.manifest != "" {
		cmd.Env = append(cmd.Env, manifestEnv+"="+b.manifest)
	}
	cmd.Env = append(cmd.Env, b.extraEnv...)
	cmd.Stderr = b.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("wire worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("wire worker stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %v", ErrWorkerNotAvailable, path, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseBytes)

	b.cmd = cmd
	b.stdin = stdin
	b.scanner = scanner
	b.logger.Info("worker started", "path", path, "pid", cmd.Process.Pid)
	return nil
}

// handshake checks liveness and loads the format table.
func (b *Bridge) handshake(ctx context.Context) error {
	if err := b.Ping(ctx); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// Ping performs a liveness round-trip.
func (b *Bridge) Ping(ctx context.Context) error {
	raw, err := b.call(ctx, "ping", nil)
	if err != nil {
		return err
	}
	var reply string
	if err := json.Unmarshal(raw, &reply); err != nil || reply != "pong" {
		return fmt.Errorf("%w: unexpected ping reply %s", ErrWorkerNotAvailable, raw)
	}
	return nil
}

// Refresh re-runs discover and replaces the cached format table.
func (b *Bridge) Refresh(ctx context.Context) error {
	raw, err := b.call(ctx, "discover", nil)
	if err != nil {
		return err
	}
	var formats []Format
	if err := json.Unmarshal(raw, &formats); err != nil {
		return fmt.Errorf("%w: malformed discover result: %v", ErrWorkerNotAvailable, err)
	}

	b.mu.Lock()
	b.order = b.order[:0]
	b.byKey = make(map[string]Format, len(formats)*2)
	for _, f := range formats {
		name := strings.ToLower(f.Name)
		b.order = append(b.order, name)
		b.byKey[name] = f
		for _, suffix := range f.Suffixes {
			key := "." + strings.ToLower(strings.TrimPrefix(suffix, "."))
			if _, taken := b.byKey[key]; !taken {
				b.byKey[key] = f
			}
		}
	}
	b.mu.Unlock()

	b.logger.Info("formats discovered", "count", len(formats))
	return nil
}

// Formats returns the cached discover snapshot in worker order.
func (b *Bridge) Formats() []Format {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Format, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.byKey[name])
	}
	return out
}

// Lookup resolves a format by adapter name or dot-prefixed suffix (".reel").
func (b *Bridge) Lookup(key string) (Format, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.byKey[strings.ToLower(key)]
	if !ok {
		return Format{}, fmt.Errorf("%q: %w", key, ErrFormatNotFound)
	}
	return f, nil
}

// ReadFile loads a file through the worker and returns the canonical
// document. adapter may be empty to auto-detect from the path suffix.
func (b *Bridge) ReadFile(ctx context.Context, path, adapter string, args map[string]any) (string, error) {
	raw, err := b.call(ctx, "read_from_file", callParams{Filepath: path, Adapter: adapter, Args: args})
	if err != nil {
		return "", err
	}
	return decodeString("read_from_file", raw)
}

// ReadString parses data through the named adapter and returns the canonical
// document.
func (b *Bridge) ReadString(ctx context.Context, data, adapter string, args map[string]any) (string, error) {
	raw, err := b.call(ctx, "read_from_string", callParams{Data: data, Adapter: adapter, Args: args})
	if err != nil {
		return "", err
	}
	return decodeString("read_from_string", raw)
}

// WriteFile writes a canonical document to path through the worker. adapter
// may be empty to auto-detect from the path suffix.
func (b *Bridge) WriteFile(ctx context.Context, doc, path, adapter string, args map[string]any) error {
	_, err := b.call(ctx, "write_to_file", callParams{Data: doc, Filepath: path, Adapter: adapter, Args: args})
	return err
}

// WriteString serializes a canonical document through the named adapter.
func (b *Bridge) WriteString(ctx context.Context, doc, adapter string, args map[string]any) (string, error) {
	raw, err := b.call(ctx, "write_to_string", callParams{Data: doc, Adapter: adapter, Args: args})
	if err != nil {
		return "", err
	}
	return decodeString("write_to_string", raw)
}

// call sends one request line and reads exactly one response line. The mutex
// serializes callers; the worker is strictly FIFO so one request is in
// flight at a time.
func (b *Bridge) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBridgeClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := request{ID: b.nextID, Method: method, Params: params}
	b.nextID++

	start := time.Now()
	raw, err := b.breaker.Execute(func() (json.RawMessage, error) {
		resp, err := b.roundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, &RemoteError{Method: method, Message: *resp.Error}
		}
		return resp.Result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrWorkerNotAvailable, err)
		}
		b.logger.Debug("call failed", "method", method, "id", req.ID, "duration", time.Since(start), "error", err)
		return nil, err
	}

	b.logger.Debug("call completed", "method", method, "id", req.ID, "duration", time.Since(start))
	return raw, nil
}

// roundTrip writes req as one line and decodes the next line as its
// response. Any failure here means the transport is broken: the worker never
// answers out of order.
func (b *Bridge) roundTrip(req request) (response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := b.stdin.Write(append(data, '\n')); err != nil {
		return response{}, b.transportLost(fmt.Sprintf("write request: %v", err))
	}

	if !b.scanner.Scan() {
		msg := "worker closed its output stream"
		if err := b.scanner.Err(); err != nil {
			msg = fmt.Sprintf("read response: %v", err)
		}
		return response{}, b.transportLost(msg)
	}

	var resp response
	if err := json.Unmarshal(b.scanner.Bytes(), &resp); err != nil {
		return response{}, b.transportLost(fmt.Sprintf("malformed response line: %v", err))
	}

	var gotID uint64
	if err := json.Unmarshal(resp.ID, &gotID); err != nil || gotID != req.ID {
		return response{}, b.transportLost(fmt.Sprintf("response id %s does not match request id %d", resp.ID, req.ID))
	}
	return resp, nil
}

// transportLost builds a worker-not-available error carrying the stderr tail.
func (b *Bridge) transportLost(msg string) error {
	if tail := strings.TrimSpace(b.stderr.String()); tail != "" {
		return fmt.Errorf("%w: %s; worker stderr: %s", ErrWorkerNotAvailable, msg, tail)
	}
	return fmt.Errorf("%w: %s", ErrWorkerNotAvailable, msg)
}

// Close shuts the worker down by closing its stdin (end-of-stream is the
// shutdown signal), waits briefly, then kills it if it lingers. Safe to call
// more than once.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.stdin != nil {
		b.stdin.Close()
	}
	if b.cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- b.cmd.Wait() }()

	select {
	case err := <-done:
		b.logger.Info("worker exited")
		return err
	case <-time.After(shutdownWait):
		b.logger.Warn("worker did not exit, killing", "pid", b.cmd.Process.Pid)
		b.cmd.Process.Kill()
		<-done
		return fmt.Errorf("worker did not exit on end-of-stream, killed")
	}
}

// kill tears the worker down without the graceful stdin close, for handshake
// failures.
func (b *Bridge) kill() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.stdin != nil {
		b.stdin.Close()
	}
	if b.cmd != nil {
		b.cmd.Process.Kill()
		b.cmd.Wait()
	}
}

// Session returns the bridge's session id, present on all its log records.
func (b *Bridge) Session() string { return b.session }

func decodeString(method string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: malformed %s result: %v", ErrWorkerNotAvailable, method, err)
	}
	return s, nil
}

func newSessionID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
