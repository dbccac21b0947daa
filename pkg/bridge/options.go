package bridge

import (
	"log/slog"
	"time"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithWorkerPath sets the worker binary to spawn. When unset, "reelworker"
// is looked up on PATH.
func WithWorkerPath(path string) Option {
	return func(b *Bridge) { b.workerPath = path }
}

// WithAdapterManifest hands the worker a command adapter manifest via its
// environment.
func WithAdapterManifest(path string) Option {
	return func(b *Bridge) { b.manifest = path }
}

// WithEnv appends extra "KEY=VALUE" entries to the worker's environment.
func WithEnv(vars ...string) Option {
	return func(b *Bridge) { b.extraEnv = append(b.extraEnv, vars...) }
}

// WithLogger sets a custom slog.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithBreakerMaxFailures sets how many consecutive transport failures open
// the circuit.
func WithBreakerMaxFailures(n uint32) Option {
	return func(b *Bridge) { b.breakerMaxFailures = n }
}

// WithBreakerTimeout sets how long the circuit stays open before a probe is
// allowed through.
func WithBreakerTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.breakerTimeout = d }
}
