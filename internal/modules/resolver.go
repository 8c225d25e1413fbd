// Package modules resolves import statements to files and walks the import
// graph of a program.
package modules

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
	"github.com/funvibe/surf/internal/token"
	"github.com/funvibe/surf/internal/utils"
)

type Resolver struct {
	// StdlibRoot is where `@Surf:standard/` imports are looked up.
	StdlibRoot string
	// SourceExt is appended to relative imports written without an extension.
	SourceExt string
	// HeaderPatterns classify import targets as foreign headers.
	HeaderPatterns []string
	// Prelude lists standard-library imports every program receives.
	Prelude []string
	// LenientEOF is forwarded to the lexer when scanning imported files.
	LenientEOF bool

	matchers  []glob.Glob
	summaries *ext.Cache
}

// NewResolver builds a resolver from cfg. headers may be nil, in which case
// symbol manifests are read; store may be nil to disable the persistent cache.
func NewResolver(cfg *config.Config, headers ext.HeaderReader, store *ext.Store) (*Resolver, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Resolver{
		StdlibRoot:     cfg.StdlibRoot(),
		SourceExt:      config.SourceFileExt,
		HeaderPatterns: cfg.HeaderPatterns,
		Prelude:        cfg.Prelude,
		LenientEOF:     cfg.Lexer.LenientEOF,
		summaries:      ext.NewCache(headers, store),
	}
	if len(r.HeaderPatterns) == 0 {
		r.HeaderPatterns = config.DefaultHeaderPatterns
	}
	for _, p := range r.HeaderPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, diagnostics.Wrap(err, diagnostics.ErrConfig, fmt.Sprintf("invalid header pattern %q", p))
		}
		r.matchers = append(r.matchers, g)
	}
	if r.StdlibRoot != "" {
		if abs, err := filepath.Abs(r.StdlibRoot); err == nil {
			r.StdlibRoot = abs
		}
	}
	return r, nil
}

// IsHeader reports whether path names a foreign header.
func (r *Resolver) IsHeader(path string) bool {
	name := filepath.Base(path)
	for _, g := range r.matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Resolve turns `import "path" [;]` into an Import. The location is
// absolute; standard-library paths default to the header extension and
// everything else to the source extension.
func (r *Resolver) Resolve(stmt []token.Token, importingFile string) (ast.Import, error) {
	lit, err := statementPath(stmt)
	if err != nil {
		return ast.Import{}, err
	}
	return r.resolveRaw(lit.Lexeme, importingFile, stmt[0])
}

// ResolveAll is Resolve, except that a standard-library directory also
// yields one import per header inside it.
func (r *Resolver) ResolveAll(stmt []token.Token, importingFile string) ([]ast.Import, error) {
	imp, err := r.Resolve(stmt, importingFile)
	if err != nil {
		return nil, err
	}
	if imp.Kind != ast.PackageImport {
		return []ast.Import{imp}, nil
	}

	entries, err := os.ReadDir(imp.Location)
	if err != nil {
		return nil, diagnostics.Wrap(err, diagnostics.ErrImportNotFound, "failed to read standard library package").
			WithTrace(imp.Trace)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && r.IsHeader(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := []ast.Import{imp}
	for _, name := range names {
		out = append(out, ast.Import{
			Location: filepath.Join(imp.Location, name),
			Trace:    imp.Trace,
			Kind:     ast.HeaderImport,
		})
	}
	return out, nil
}

// Locate implements lexer.ImportLocator: only Surf source files are spliced.
func (r *Resolver) Locate(raw, from string) (string, bool, error) {
	imp, err := r.resolveRaw(raw, from, token.Token{})
	if err != nil {
		return "", false, err
	}
	return imp.Location, imp.Kind == ast.SourceImport, nil
}

// PreludeImports resolves the implicit standard-library imports. Without a
// configured standard library there is no prelude.
func (r *Resolver) PreludeImports() ([]ast.Import, error) {
	if r.StdlibRoot == "" {
		if len(r.Prelude) > 0 {
			slog.Debug("standard library root not set, skipping prelude")
		}
		return nil, nil
	}
	var out []ast.Import
	for _, p := range r.Prelude {
		imp, err := r.resolveRaw(config.StdlibSigil+p, "", token.Token{})
		if err != nil {
			if de := diagnostics.As(err); de.Code == diagnostics.ErrImportNotFound {
				de.WithHints("Check the prelude list in " + config.ProjectFileName)
			}
			return nil, err
		}
		imp.Trace = "<prelude>"
		out = append(out, imp)
	}
	return out, nil
}

// Summary returns the cached symbol summary of a header.
func (r *Resolver) Summary(location string) (*ext.Summary, error) {
	s, err := r.summaries.Summary(location)
	if err != nil {
		return nil, diagnostics.Wrap(err, diagnostics.ErrInvalidHeader, "failed to summarize "+token.DisplayPath(location))
	}
	return s, nil
}

func (r *Resolver) resolveRaw(raw, from string, at token.Token) (ast.Import, error) {
	trace := ""
	if at.Line > 0 {
		trace = at.Trace()
	}
	if raw == "" {
		return ast.Import{}, diagnostics.NewError(diagnostics.ErrSyntax, at, "empty import path")
	}

	var path string
	if rest, ok := utils.StripStdlibSigil(raw); ok {
		if r.StdlibRoot == "" {
			return ast.Import{}, diagnostics.Errorf(diagnostics.ErrImportNotFound, at, "cannot resolve %q: the standard library root is not configured", raw).
				WithHints("Set " + config.StdlibEnv + " or standard_path in " + config.ProjectFileName)
		}
		path = filepath.Join(r.StdlibRoot, rest)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return ast.Import{Location: path, Trace: trace, Kind: ast.PackageImport}, nil
		}
		path = utils.WithDefaultExt(path, config.DefaultHeaderExt)
	} else {
		base := "."
		if from != "" {
			base = filepath.Dir(from)
		}
		path = utils.WithDefaultExt(utils.ResolveImportPath(base, raw), r.SourceExt)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ast.Import{}, diagnostics.Wrap(err, diagnostics.ErrImportNotFound, "invalid import path").WithTrace(trace)
	}
	if err := checkFile(abs); err != nil {
		return ast.Import{}, diagnostics.Errorf(diagnostics.ErrImportNotFound, at, "import %q not found", raw).
			WithHints("Looked for " + token.DisplayPath(abs))
	}

	imp := ast.Import{Location: abs, Trace: trace}
	switch {
	case r.IsHeader(abs):
		imp.Kind = ast.HeaderImport
	case config.HasSourceExt(abs):
		imp.Kind = ast.SourceImport
	default:
		return ast.Import{}, diagnostics.Errorf(diagnostics.ErrSyntax, at, "cannot import %q: not a %s file or a header", raw, r.SourceExt)
	}
	return imp, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.ErrNotExist
	}
	return nil
}

func statementPath(stmt []token.Token) (token.Token, error) {
	if len(stmt) == 0 || stmt[0].Type != token.IMPORT {
		return token.Token{}, errors.New("not an import statement")
	}
	if len(stmt) < 2 || stmt[1].Type != token.STRING_LITERAL {
		return token.Token{}, diagnostics.NewError(diagnostics.ErrSyntax, stmt[0], "expected a quoted path after 'import'")
	}
	if len(stmt) > 3 || (len(stmt) == 3 && stmt[2].Type != token.SEMICOLON) {
		return token.Token{}, diagnostics.NewError(diagnostics.ErrSyntax, stmt[2], "unexpected token after import path")
	}
	return stmt[1], nil
}
