package config

import (
	"strings"
	"testing"
)

func TestLoadEnvDefaults(t *testing.T) {
	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", e.LogLevel, "info")
	}
	if e.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", e.LogFormat, "text")
	}
	if e.TraceEnabled {
		t.Error("TraceEnabled should default to false")
	}
	if e.TraceExporter != "noop" {
		t.Errorf("TraceExporter = %q, want %q", e.TraceExporter, "noop")
	}
	if e.AdapterManifest != "" {
		t.Errorf("AdapterManifest = %q, want empty", e.AdapterManifest)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REELBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("REELBRIDGE_TRACE_ENABLED", "true")
	t.Setenv("REELBRIDGE_TRACE_EXPORTER", "stdout")
	t.Setenv("REELBRIDGE_ADAPTER_MANIFEST", "/tmp/adapters.yaml")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", e.LogLevel, "debug")
	}
	if !e.TraceEnabled {
		t.Error("TraceEnabled should be true")
	}
	if e.TraceExporter != "stdout" {
		t.Errorf("TraceExporter = %q, want %q", e.TraceExporter, "stdout")
	}
	if e.AdapterManifest != "/tmp/adapters.yaml" {
		t.Errorf("AdapterManifest = %q", e.AdapterManifest)
	}
}

func TestEnvLoggerConfigPinsStderr(t *testing.T) {
	e := Env{LogLevel: "debug", LogFormat: "json"}
	lc := e.LoggerConfig()
	if lc.Output != "stderr" {
		t.Errorf("Output = %q, the worker must never log to stdout", lc.Output)
	}
	if lc.Level != "debug" || lc.Format != "json" {
		t.Errorf("LoggerConfig = %+v", lc)
	}
}

func TestEnvTracerConfig(t *testing.T) {
	e := Env{TraceEnabled: true, TraceExporter: "stdout"}
	tc := e.TracerConfig()
	if !tc.Enabled || tc.Exporter != "stdout" {
		t.Errorf("TracerConfig = %+v", tc)
	}
}

func TestEnvUsageListsVariables(t *testing.T) {
	var sb strings.Builder
	EnvUsage(&sb)
	out := sb.String()
	for _, name := range []string{
		"REELBRIDGE_LOG_LEVEL",
		"REELBRIDGE_LOG_FORMAT",
		"REELBRIDGE_TRACE_ENABLED",
		"REELBRIDGE_TRACE_EXPORTER",
		"REELBRIDGE_ADAPTER_MANIFEST",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("usage output missing %s", name)
		}
	}
}
