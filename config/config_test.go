package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Resolving {
		t.Error("Resolving = false by default, want true")
	}
	if cfg.Debug.Tiles {
		t.Error("Debug.Tiles = true by default, want false")
	}
	if cfg.Logging.Level != "" {
		t.Errorf("Logging.Level = %q by default, want empty", cfg.Logging.Level)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load(missing) = %v, want defaults", err)
	}
	if !cfg.Resolving {
		t.Error("missing file did not fall back to defaults")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if !cfg.Resolving {
		t.Error("empty path did not fall back to defaults")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vtex.yaml")
	content := []byte("debug:\n  tiles: true\nresolving: false\nlogging:\n  level: warn\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if !cfg.Debug.Tiles {
		t.Error("Debug.Tiles = false, want true")
	}
	if cfg.Resolving {
		t.Error("Resolving = true, want false")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vtex.yaml")
	if err := os.WriteFile(path, []byte("debug:\n  tiles: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug.Tiles {
		t.Error("Debug.Tiles = false, want true")
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Resolving {
		t.Error("Resolving = false, want default true for omitted key")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vtex.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(malformed) = nil, want parse error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vtex.yaml")
	cfg := &Config{
		Debug:     DebugConfig{Tiles: true},
		Resolving: false,
		Logging:   LoggingConfig{Level: "debug"},
	}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestConfigLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := Default()
	if l := cfg.Logger(&buf); l != nil {
		t.Error("Logger() with empty level = non-nil, want nil (silent default)")
	}

	cfg.Logging.Level = "bogus"
	if l := cfg.Logger(&buf); l != nil {
		t.Error("Logger() with unknown level = non-nil, want nil")
	}

	cfg.Logging.Level = "Warn"
	l := cfg.Logger(&buf)
	if l == nil {
		t.Fatal("Logger() = nil for a valid level")
	}
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("warn logger enabled at info")
	}
	if !l.Enabled(context.Background(), slog.LevelError) {
		t.Error("warn logger not enabled at error")
	}
}
