package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/surf/internal/config"
)

// ResolveImportPath resolves an import path relative to the directory of the
// importing file. Absolute paths are returned cleaned but otherwise unchanged.
func ResolveImportPath(baseDir, importPath string) string {
	if filepath.IsAbs(importPath) {
		return filepath.Clean(importPath)
	}
	if baseDir == "" {
		baseDir = "."
	}
	return filepath.Join(baseDir, importPath)
}

// WithDefaultExt appends ext when the last path element has no extension.
func WithDefaultExt(path, ext string) string {
	if config.HasExt(path) {
		return path
	}
	return path + ext
}

// StripStdlibSigil reports whether raw is a standard-library import and
// returns the remainder after the sigil.
func StripStdlibSigil(raw string) (string, bool) {
	return strings.CutPrefix(raw, config.StdlibSigil)
}
