package config

import (
	"path/filepath"
	"strings"
)

const SourceFileExt = ".surf"

// DefaultHeaderExt is appended to standard-library imports written without one.
const DefaultHeaderExt = ".h"

// StdlibSigil prefixes import paths that resolve against the standard library root.
const StdlibSigil = "@Surf:standard/"

// StdlibEnv names the environment variable holding the standard library root.
const StdlibEnv = "SURF_STANDARD_PATH"

// ProjectFileName is the optional per-project configuration file.
const ProjectFileName = "surf.yaml"

// DefaultHeaderPatterns classify import targets handled by the header collaborator.
var DefaultHeaderPatterns = []string{"*.h", "*.hpp"}

// DefaultPrelude lists standard-library headers every program imports implicitly.
var DefaultPrelude = []string{"lang/panic.h", "lang/err.hpp", "lang/result.hpp"}

// Built-in names
const (
	MainFuncName  = "main"
	HeapClassName = "Heap"
)

// HasSourceExt reports whether path names a subject-language source file.
func HasSourceExt(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}

// HasExt reports whether the last path element carries any extension.
func HasExt(path string) bool {
	return filepath.Ext(path) != ""
}
