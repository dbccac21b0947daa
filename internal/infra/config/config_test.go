package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.Logger.Format != "text" {
		t.Errorf("Logger.Format = %q, want %q", cfg.Logger.Format, "text")
	}
	if cfg.Logger.Output != "stderr" {
		t.Errorf("Logger.Output = %q, want %q", cfg.Logger.Output, "stderr")
	}
	if cfg.Tracer.Enabled {
		t.Error("Tracer.Enabled should default to false")
	}
	if cfg.Tracer.Exporter != "noop" {
		t.Errorf("Tracer.Exporter = %q, want %q", cfg.Tracer.Exporter, "noop")
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	cfg, err := Load("/tmp/nonexistent-reelbridge-config-12345.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("expected defaults, got Logger.Level=%q", cfg.Logger.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logger:
  level: "debug"
  format: "json"
tracer:
  enabled: true
  exporter: "stdout"
worker:
  path: "/opt/reelbridge/bin/reelworker"
  manifest: "/etc/reelbridge/adapters.yaml"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Logger.Format = %q, want %q", cfg.Logger.Format, "json")
	}
	if !cfg.Tracer.Enabled {
		t.Error("Tracer.Enabled should be true")
	}
	if cfg.Worker.Path != "/opt/reelbridge/bin/reelworker" {
		t.Errorf("Worker.Path = %q", cfg.Worker.Path)
	}
	if cfg.Worker.Manifest != "/etc/reelbridge/adapters.yaml" {
		t.Errorf("Worker.Manifest = %q", cfg.Worker.Manifest)
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  level: warn\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "warn")
	}
	if cfg.Logger.Format != "text" {
		t.Errorf("Logger.Format = %q, want default %q", cfg.Logger.Format, "text")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logger: [not a mapping"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REELBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("REELBRIDGE_TRACE_ENABLED", "true")
	t.Setenv("REELBRIDGE_ADAPTER_MANIFEST", "/tmp/adapters.yaml")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if !cfg.Tracer.Enabled {
		t.Error("Tracer.Enabled should be overridden to true")
	}
	if cfg.Worker.Manifest != "/tmp/adapters.yaml" {
		t.Errorf("Worker.Manifest = %q", cfg.Worker.Manifest)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Logger.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Logger.Format = "xml" }, true},
		{"bad exporter", func(c *Config) { c.Tracer.Exporter = "jaeger" }, true},
		{"stdout exporter ok", func(c *Config) { c.Tracer.Exporter = "stdout" }, false},
		{"empty exporter ok", func(c *Config) { c.Tracer.Exporter = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
