package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("cache:\n  path: .cache/s.db\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.HeaderPatterns) != len(DefaultHeaderPatterns) {
		t.Errorf("expected default header patterns, got %v", cfg.HeaderPatterns)
	}
	if len(cfg.Prelude) != len(DefaultPrelude) {
		t.Errorf("expected default prelude, got %v", cfg.Prelude)
	}
	if cfg.Cache.Path != ".cache/s.db" {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
}

func TestParseEmptyPrelude(t *testing.T) {
	cfg, err := Parse([]byte("prelude: []\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.Prelude) != 0 {
		t.Errorf("expected an explicitly empty prelude, got %v", cfg.Prelude)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty pattern", "header_patterns: ['  ']\n"},
		{"empty prelude entry", "prelude: ['']\n"},
		{"absolute prelude entry", "prelude: ['/std/lang/panic.h']\n"},
		{"malformed yaml", "prelude: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("expected an error for %q", tt.yaml)
			}
		})
	}
}

func TestFindResolvesRelativePaths(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "standard_path: std\ncache:\n  path: cache.db\noutput:\n  model: out/model.yaml\n"
	if err := os.WriteFile(filepath.Join(root, ProjectFileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(StdlibEnv, "")

	cfg, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got, want := cfg.StdlibRoot(), filepath.Join(root, "std"); got != want {
		t.Errorf("StdlibRoot() = %q, want %q", got, want)
	}
	if got, want := cfg.CachePath(), filepath.Join(root, "cache.db"); got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
	if got, want := cfg.ModelPath(), filepath.Join(root, "out", "model.yaml"); got != want {
		t.Errorf("ModelPath() = %q, want %q", got, want)
	}
}

func TestFindWithoutProjectFile(t *testing.T) {
	t.Setenv(StdlibEnv, "")
	cfg, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if cfg.StdlibRoot() != "" || cfg.CachePath() != "" || cfg.ModelPath() != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestStdlibEnvOverrides(t *testing.T) {
	cfg, err := Parse([]byte("standard_path: /from/config\n"))
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(StdlibEnv, "/from/env")
	if got := cfg.StdlibRoot(); got != "/from/env" {
		t.Errorf("StdlibRoot() = %q", got)
	}
}
