package config

import (
	"fmt"
	"io"

	"go-simpler.org/env"
)

// Env is the worker's environment configuration. Every variable tunes
// diagnostics or adapter provisioning; with none set the worker's observable
// protocol behavior is the bare stdin/stdout contract.
type Env struct {
	LogLevel        string `env:"REELBRIDGE_LOG_LEVEL" default:"info" usage:"log level: debug, info, warn, error"`
	LogFormat       string `env:"REELBRIDGE_LOG_FORMAT" default:"text" usage:"log format: text or json"`
	TraceEnabled    bool   `env:"REELBRIDGE_TRACE_ENABLED" default:"false" usage:"emit a trace span per dispatched request"`
	TraceExporter   string `env:"REELBRIDGE_TRACE_EXPORTER" default:"noop" usage:"trace exporter: stdout (written to stderr) or noop"`
	AdapterManifest string `env:"REELBRIDGE_ADAPTER_MANIFEST" usage:"path to a command adapter manifest"`
}

// LoadEnv reads the worker environment, applying defaults for unset
// variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Load(&e, nil); err != nil {
		return Env{}, fmt.Errorf("load environment: %w", err)
	}
	return e, nil
}

// EnvUsage writes the environment variable table to w.
func EnvUsage(w io.Writer) {
	var e Env
	env.Usage(&e, w, nil)
}

// LoggerConfig returns the logger settings the environment selects. Output is
// pinned to stderr: the worker's stdout is the protocol stream.
func (e Env) LoggerConfig() LoggerConfig {
	return LoggerConfig{Level: e.LogLevel, Format: e.LogFormat, Output: "stderr"}
}

// TracerConfig returns the tracer settings the environment selects.
func (e Env) TracerConfig() TracerConfig {
	return TracerConfig{Enabled: e.TraceEnabled, Exporter: e.TraceExporter}
}
