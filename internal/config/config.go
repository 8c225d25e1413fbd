// Package config holds compiler-wide constants and the optional surf.yaml
// project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level surf.yaml configuration.
type Config struct {
	// StandardPath is the standard library root. SURF_STANDARD_PATH overrides it.
	StandardPath string `yaml:"standard_path,omitempty"`

	// HeaderPatterns are glob patterns (matched against the file name) that mark
	// an import target as a foreign header rather than Surf source.
	HeaderPatterns []string `yaml:"header_patterns,omitempty"`

	// Prelude lists standard-library imports added to every program.
	Prelude []string `yaml:"prelude"`

	Cache  CacheConfig  `yaml:"cache,omitempty"`
	Lexer  LexerConfig  `yaml:"lexer,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`

	// dir is the directory surf.yaml was loaded from; relative paths resolve against it.
	dir string
}

type CacheConfig struct {
	// Path of the sqlite file caching header summaries. Empty disables the cache.
	Path string `yaml:"path,omitempty"`
}

type LexerConfig struct {
	// LenientEOF keeps the legacy behaviour of silently dropping an unterminated
	// string literal or block comment at end of input.
	LenientEOF bool `yaml:"lenient_eof,omitempty"`
}

type OutputConfig struct {
	// Model is where the validated program model is written. Empty disables it.
	Model string `yaml:"model,omitempty"`
}

// Default returns the configuration used when no surf.yaml exists.
func Default() *Config {
	return &Config{
		HeaderPatterns: append([]string(nil), DefaultHeaderPatterns...),
		Prelude:        append([]string(nil), DefaultPrelude...),
	}
}

// Load reads and validates a surf.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.dir = abs
	return cfg, nil
}

// Parse decodes surf.yaml content on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.HeaderPatterns) == 0 {
		cfg.HeaderPatterns = append([]string(nil), DefaultHeaderPatterns...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find walks up from dir looking for surf.yaml. It returns Default() when
// none is found.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(abs, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	for _, p := range c.HeaderPatterns {
		if strings.TrimSpace(p) == "" {
			return errors.New("header_patterns: empty pattern")
		}
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("header_patterns: invalid pattern %q: %w", p, err)
		}
	}
	for _, p := range c.Prelude {
		if strings.TrimSpace(p) == "" {
			return errors.New("prelude: empty import")
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("prelude: %q must be relative to the standard library root", p)
		}
	}
	return nil
}

// StdlibRoot returns the standard library root, preferring the environment.
func (c *Config) StdlibRoot() string {
	if env := strings.TrimSpace(os.Getenv(StdlibEnv)); env != "" {
		return env
	}
	return c.resolve(c.StandardPath)
}

// CachePath returns the absolute summary cache path, or "" when disabled.
func (c *Config) CachePath() string {
	return c.resolve(c.Cache.Path)
}

// ModelPath returns the absolute model output path, or "" when disabled.
func (c *Config) ModelPath() string {
	return c.resolve(c.Output.Model)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
