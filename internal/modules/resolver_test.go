package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/lexer"
	"github.com/funvibe/surf/internal/token"
)

// unpack writes a txtar archive into a fresh directory and returns it.
func unpack(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

func newResolver(t *testing.T, stdlib string) *Resolver {
	t.Helper()
	t.Setenv(config.StdlibEnv, stdlib)
	r, err := NewResolver(config.Default(), nil, nil)
	require.NoError(t, err)
	return r
}

func importStmt(path string) []token.Token {
	return []token.Token{
		{Type: token.IMPORT, Lexeme: "import", File: "main.surf", Line: 1, Column: 1},
		{Type: token.STRING_LITERAL, Lexeme: path, File: "main.surf", Line: 1, Column: 8},
		{Type: token.SEMICOLON, Lexeme: ";", File: "main.surf", Line: 1, Column: 8 + len(path) + 2},
	}
}

func program(t *testing.T, dir, entry string) *ast.FileCode {
	t.Helper()
	path := filepath.Join(dir, entry)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return &ast.FileCode{Path: path, Source: string(data)}
}

const stdlibArchive = `
-- std/lang/panic.h --
void panic(const char*);
-- std/lang/heap.hpp --
template <typename T> class Heap;
-- std/lang/heap.hpp.yaml --
symbols:
  - name: Heap
    kind: class
    generics: 1
-- std/lang/notes.txt --
not a header
-- std/io.h --
int print(const char*);
-- app/main.surf --
fun main() {}
-- app/util.surf --
fun helper() {}
`

func TestResolveRelativeSource(t *testing.T) {
	dir := unpack(t, stdlibArchive)
	r := newResolver(t, "")

	imp, err := r.Resolve(importStmt("util"), filepath.Join(dir, "app", "main.surf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app", "util.surf"), imp.Location)
	assert.Equal(t, ast.SourceImport, imp.Kind)
	assert.True(t, filepath.IsAbs(imp.Location))
	assert.Equal(t, "main.surf:1:1", imp.Trace)
}

func TestResolveStdlibHeader(t *testing.T) {
	dir := unpack(t, stdlibArchive)
	r := newResolver(t, filepath.Join(dir, "std"))

	imp, err := r.Resolve(importStmt("@Surf:standard/io"), filepath.Join(dir, "app", "main.surf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "std", "io.h"), imp.Location)
	assert.Equal(t, ast.HeaderImport, imp.Kind)

	imp, err = r.Resolve(importStmt("@Surf:standard/lang/heap.hpp"), "")
	require.NoError(t, err)
	assert.Equal(t, ast.HeaderImport, imp.Kind)
}

func TestResolveStdlibWithoutRoot(t *testing.T) {
	r := newResolver(t, "")
	_, err := r.Resolve(importStmt("@Surf:standard/io"), "main.surf")
	require.Error(t, err)
	de := diagnostics.As(err)
	assert.Equal(t, diagnostics.ErrImportNotFound, de.Code)
	assert.NotEmpty(t, de.Hints)
}

func TestResolveMissing(t *testing.T) {
	dir := unpack(t, stdlibArchive)
	r := newResolver(t, filepath.Join(dir, "std"))

	for _, raw := range []string{"nope", "@Surf:standard/nope"} {
		_, err := r.Resolve(importStmt(raw), filepath.Join(dir, "app", "main.surf"))
		assert.True(t, diagnostics.IsCode(err, diagnostics.ErrImportNotFound), "%s: %v", raw, err)
	}
}

func TestResolveRejectsMalformedStatement(t *testing.T) {
	r := newResolver(t, "")
	stmt := importStmt("util")
	stmt[2] = token.Token{Type: token.UNKNOWN, Lexeme: "x", Line: 1, Column: 14}
	_, err := r.Resolve(stmt, "main.surf")
	assert.True(t, diagnostics.IsCode(err, diagnostics.ErrSyntax), "%v", err)
}

func TestResolveAllExpandsPackage(t *testing.T) {
	dir := unpack(t, stdlibArchive)
	r := newResolver(t, filepath.Join(dir, "std"))

	imports, err := r.ResolveAll(importStmt("@Surf:standard/lang"), filepath.Join(dir, "app", "main.surf"))
	require.NoError(t, err)
	require.Len(t, imports, 3)
	assert.Equal(t, ast.PackageImport, imports[0].Kind)
	assert.Equal(t, filepath.Join(dir, "std", "lang", "heap.hpp"), imports[1].Location)
	assert.Equal(t, filepath.Join(dir, "std", "lang", "panic.h"), imports[2].Location)
	for _, imp := range imports[1:] {
		assert.Equal(t, ast.HeaderImport, imp.Kind)
		assert.Equal(t, imports[0].Trace, imp.Trace)
	}
}

func TestLocate(t *testing.T) {
	dir := unpack(t, stdlibArchive)
	r := newResolver(t, filepath.Join(dir, "std"))
	from := filepath.Join(dir, "app", "main.surf")

	loc, source, err := r.Locate("util", from)
	require.NoError(t, err)
	assert.True(t, source)
	assert.Equal(t, filepath.Join(dir, "app", "util.surf"), loc)

	_, source, err = r.Locate("@Surf:standard/io", from)
	require.NoError(t, err)
	assert.False(t, source, "headers stay in the stream")

	_, source, err = r.Locate("@Surf:standard/lang", from)
	require.NoError(t, err)
	assert.False(t, source, "packages stay in the stream")
}

func TestPreludeImports(t *testing.T) {
	dir := unpack(t, stdlibArchive)

	r := newResolver(t, "")
	imports, err := r.PreludeImports()
	require.NoError(t, err)
	assert.Empty(t, imports, "no standard library means no prelude")

	r = newResolver(t, filepath.Join(dir, "std"))
	r.Prelude = []string{"lang/panic.h", "io"}
	imports, err = r.PreludeImports()
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, filepath.Join(dir, "std", "io.h"), imports[1].Location)

	r.Prelude = []string{"lang/err.hpp"}
	_, err = r.PreludeImports()
	assert.True(t, diagnostics.IsCode(err, diagnostics.ErrImportNotFound))
}

func TestIsHeader(t *testing.T) {
	r := newResolver(t, "")
	assert.True(t, r.IsHeader("/x/vector.hpp"))
	assert.True(t, r.IsHeader("panic.h"))
	assert.False(t, r.IsHeader("main.surf"))
	assert.False(t, r.IsHeader("heap.hpp.yaml"))
}

func TestSplicingWithResolver(t *testing.T) {
	dir := unpack(t, `
-- main.surf --
import "util";
fun main() {}
-- util.surf --
fun helper() -> num { return 1; }
`)
	r := newResolver(t, "")
	main := filepath.Join(dir, "main.surf")
	util := filepath.Join(dir, "util.surf")
	mainSrc, _ := os.ReadFile(main)
	utilSrc, _ := os.ReadFile(util)

	l := lexer.New(lexer.WithLocator(r))
	spliced, err := l.Tokenize(string(mainSrc), main)
	require.NoError(t, err)

	// the spliced stream equals the target's own tokens followed by the rest
	// of the importing file
	utilTokens, err := lexer.New().TokenizeSingle(string(utilSrc), util)
	require.NoError(t, err)
	mainTokens, err := lexer.New().TokenizeSingle(string(mainSrc), main)
	require.NoError(t, err)
	want := append(utilTokens, mainTokens[3:]...)
	assert.Equal(t, want, spliced)

	require.Len(t, l.Spliced(), 1)
	assert.Equal(t, util, l.Spliced()[0].Location)
}
