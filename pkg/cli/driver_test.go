package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/surf/internal/backend"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
)

const project = `
-- surf.yaml --
standard_path: std
prelude:
  - lang/heap.hpp
cache:
  path: .cache/summaries.db
output:
  model: model.yaml
-- std/lang/heap.hpp --
template <typename T> class Heap;
-- std/lang/heap.hpp.yaml --
symbols:
  - name: Heap
    kind: class
    generics: 1
-- std/lang/box.hpp --
template <typename T> class Box;
-- std/lang/box.hpp.yaml --
symbols:
  - name: Box
    kind: class
    generics: 1
-- app/main.surf --
import "util";
import "@Surf:standard/lang/box.hpp";

fun main() {
	let b: Box<num> = make_box();
	let camelCase: num = 1;
}
-- app/util.surf --
pub fun keep(n: num) -> &Box<num> {
	return Heap(n).unwrap();
}
-- app/dangling.surf --
fun broken() -> &str {
	let y: str = "a";
	return y;
}

fun main() {}
-- app/nested_import.surf --
fun main() {
	import "empty";
}
-- app/empty.surf --
// nothing but a comment
-- app/cycle_a.surf --
import "cycle_b";
fun main() {}
-- app/cycle_b.surf --
import "cycle_a";
fun helper() {}
`

// unpack writes a txtar archive into a fresh directory and returns it.
func unpack(t *testing.T, archive string) string {
	t.Helper()
	t.Setenv(config.StdlibEnv, "")
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

func newDriver(t *testing.T, entry string) *Driver {
	t.Helper()
	d, err := NewDriver(entry, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDriverCheck(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "main.surf")

	ctx := newDriver(t, entry).Check(entry)
	require.False(t, ctx.Failed(), "%v", ctx.Err())

	require.Len(t, ctx.Program.Functions, 2)
	assert.Equal(t, "keep", ctx.Program.Functions[0].Name)
	assert.Equal(t, "main", ctx.Program.Functions[1].Name)

	assert.Contains(t, ctx.Files, filepath.Join(dir, "std", "lang", "heap.hpp"))
	assert.Contains(t, ctx.Files, filepath.Join(dir, "std", "lang", "box.hpp"))
	require.Len(t, ctx.Summaries, 2)
	assert.Equal(t, filepath.Join(dir, "std", "lang", "box.hpp"), ctx.Summaries[0].Location, "headers are ordered as reached")
	assert.Equal(t, filepath.Join(dir, "std", "lang", "heap.hpp"), ctx.Summaries[1].Location)

	require.Len(t, ctx.Warnings, 1)
	assert.Equal(t, diagnostics.WarnNaming, ctx.Warnings[0].Code)

	data, err := os.ReadFile(filepath.Join(dir, "model.yaml"))
	require.NoError(t, err)
	var m backend.Model
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, ctx.BuildID, m.BuildID)
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "&Box<num>", m.Functions[0].Returns)
}

func TestDriverPersistsSummaries(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "main.surf")

	ctx := newDriver(t, entry).Check(entry)
	require.False(t, ctx.Failed(), "%v", ctx.Err())

	store, err := ext.Open(filepath.Join(dir, ".cache", "summaries.db"))
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDriverCheckFailureWritesNoModel(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "dangling.surf")

	ctx := newDriver(t, entry).Check(entry)
	require.True(t, ctx.Failed())
	assert.Equal(t, diagnostics.ErrDanglingReference, ctx.Errors[0].Code)

	_, err := os.Stat(filepath.Join(dir, "model.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestDriverRejectsImportInsideBody(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "nested_import.surf")

	ctx := newDriver(t, entry).Check(entry)
	require.True(t, ctx.Failed())
	assert.Equal(t, diagnostics.ErrSyntax, ctx.Errors[0].Code)
	assert.Contains(t, ctx.Errors[0].Message, "imports are only allowed between top-level declarations")
	assert.Nil(t, ctx.Program)
}

func TestDriverMissingEntry(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "nope.surf")

	ctx := newDriver(t, entry).Check(entry)
	require.True(t, ctx.Failed())
	assert.Equal(t, diagnostics.ErrImportNotFound, ctx.Errors[0].Code)
}

func TestDriverRejectsBadConfig(t *testing.T) {
	dir := unpack(t, `
-- surf.yaml --
prelude:
  - /abs/heap.hpp
-- main.surf --
fun main() {}
`)
	_, err := NewDriver(filepath.Join(dir, "main.surf"), Options{})
	require.Error(t, err)
	assert.True(t, diagnostics.IsCode(err, diagnostics.ErrConfig))
}

func TestDriverImports(t *testing.T) {
	dir := unpack(t, project)
	entry := filepath.Join(dir, "app", "main.surf")

	graph, ctx := newDriver(t, entry).Imports(entry)
	require.False(t, ctx.Failed(), "%v", ctx.Err())
	assert.Equal(t, entry, graph.Entry)
	assert.Contains(t, graph.Files, filepath.Join(dir, "app", "util.surf"))

	chain, ok := graph.ImportChain(entry, filepath.Join(dir, "app", "util.surf"))
	require.True(t, ok)
	assert.Len(t, chain, 2)
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), append([]string{"surf"}, args...), &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

func TestRunCheck(t *testing.T) {
	dir := unpack(t, project)

	code, _, stderr := runCLI(t, "check", filepath.Join(dir, "app", "main.surf"))
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "[WARN]  [NamingStyle]")
	assert.Contains(t, stderr, "camel_case")
	assert.Contains(t, stderr, "2 functions in 2 source files, no errors")
}

func TestRunCheckReportsErrors(t *testing.T) {
	dir := unpack(t, project)

	code, _, stderr := runCLI(t, "check", filepath.Join(dir, "app", "dangling.surf"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[ERROR] [DanglingReference]")
	assert.Contains(t, stderr, "[HELP]  Use Heap<T>.unwrap() to return heap-allocated values")
}

func TestRunCheckCycle(t *testing.T) {
	dir := unpack(t, project)

	code, _, stderr := runCLI(t, "check", filepath.Join(dir, "app", "cycle_a.surf"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[CircularDependency]")
	assert.Contains(t, stderr, "import chain:")
	assert.Contains(t, stderr, "-> "+filepath.Join(dir, "app", "cycle_b.surf"))
}

func TestRunCheckOutputFlag(t *testing.T) {
	dir := unpack(t, project)
	out := filepath.Join(dir, "elsewhere.yaml")

	code, _, stderr := runCLI(t, "check", "--output", out, filepath.Join(dir, "app", "main.surf"))
	require.Equal(t, 0, code, stderr)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRunTokens(t *testing.T) {
	dir := unpack(t, project)

	code, stdout, stderr := runCLI(t, "tokens", filepath.Join(dir, "app", "main.surf"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"keep"`, "spliced tokens are listed")
	assert.Contains(t, stdout, `"main"`)
	assert.NotContains(t, stdout, `"util"`, "source import statements are spliced away")
}

func TestRunImportsWhy(t *testing.T) {
	dir := unpack(t, project)
	box := filepath.Join(dir, "std", "lang", "box.hpp")

	code, stdout, stderr := runCLI(t, "imports", "--why", box, filepath.Join(dir, "app", "main.surf"))
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "-> "))
	assert.True(t, strings.HasPrefix(lines[1], " -> "))
	assert.True(t, strings.HasSuffix(lines[1], "box.hpp"))
}

func TestRunImportsListing(t *testing.T) {
	dir := unpack(t, project)

	code, stdout, stderr := runCLI(t, "imports", filepath.Join(dir, "app", "main.surf"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "source  ")
	assert.Contains(t, stdout, "header  ")
	assert.Contains(t, stdout, "-> ")
}
