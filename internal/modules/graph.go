package modules

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
	"github.com/funvibe/surf/internal/lexer"
	"github.com/funvibe/surf/internal/token"
)

// Graph is the transitive import closure of one program.
type Graph struct {
	Entry string
	// Files lists every reached file in the order it was processed.
	Files []string
	// Edges maps a file to the locations it imports, in source order.
	Edges map[string][]string
	// Headers holds the summary of every reached header.
	Headers map[string]*ext.Summary
}

// Summaries returns the header summaries in processing order.
func (g *Graph) Summaries() ext.Set {
	var set ext.Set
	for _, f := range g.Files {
		if s, ok := g.Headers[f]; ok {
			set = append(set, s)
		}
	}
	return set
}

// ImportChain returns the shortest import path from one file to another.
func (g *Graph) ImportChain(from, to string) ([]string, bool) {
	if from == to {
		return []string{from}, true
	}
	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		neighbors := slices.Clone(g.Edges[curr])
		sort.Strings(neighbors)
		for _, next := range neighbors {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr
			if next == to {
				chain := []string{to}
				for at := curr; at != from; at = prev[at] {
					chain = append(chain, at)
				}
				chain = append(chain, from)
				slices.Reverse(chain)
				return chain, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

type workItem struct {
	location string
	kind     ast.ImportKind
	// chain is the ancestor chain ending with location itself.
	chain []string
	// source is set for the entry file, which may not exist on disk.
	source *string
}

// AnalyzeImports walks the full import closure of fc with an explicit
// worklist. Each item carries its chain of ancestors; an item found in its
// own chain is a circular dependency. Files already processed through
// another path are not walked again. The worklist and memo are local to the
// call.
func (r *Resolver) AnalyzeImports(fc *ast.FileCode) (*Graph, error) {
	entry := fc.Path
	if entry != "" {
		if abs, err := filepath.Abs(entry); err == nil {
			entry = abs
		}
	}
	g := &Graph{
		Entry:   entry,
		Edges:   make(map[string][]string),
		Headers: make(map[string]*ext.Summary),
	}
	processed := make(map[string]bool)

	var work []workItem
	for _, imp := range slices.Backward(fc.Imports) {
		if imp.Kind == ast.SourceImport {
			// spliced files are reached again through the entry's statements
			continue
		}
		work = append(work, workItem{location: imp.Location, kind: imp.Kind, chain: []string{entry, imp.Location}})
	}
	for _, imp := range fc.Imports {
		if imp.Kind != ast.SourceImport {
			g.Edges[entry] = appendUnique(g.Edges[entry], imp.Location)
		}
	}
	src := fc.Source
	work = append(work, workItem{location: entry, kind: ast.SourceImport, chain: []string{entry}, source: &src})

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		ancestors := item.chain[:len(item.chain)-1]
		if slices.Contains(ancestors, item.location) {
			return nil, diagnostics.NewError(diagnostics.ErrCircularDependency, token.Token{}, "circular dependency detected").
				WithChain(item.chain).
				WithHints("Separate dependencies into different files to avoid this issue")
		}
		if processed[item.location] {
			continue
		}
		processed[item.location] = true
		g.Files = append(g.Files, item.location)

		switch item.kind {
		case ast.PackageImport:
			continue
		case ast.HeaderImport:
			if err := checkFile(item.location); err != nil {
				return nil, notFound(item)
			}
			s, err := r.Summary(item.location)
			if err != nil {
				return nil, withChain(err, item.chain)
			}
			g.Headers[item.location] = s
			continue
		}

		var text string
		if item.source != nil {
			text = *item.source
		} else {
			data, err := os.ReadFile(item.location)
			if err != nil {
				return nil, notFound(item)
			}
			text = string(data)
		}

		children, err := r.fileImports(text, item.location)
		if err != nil {
			return nil, withChain(err, item.chain)
		}
		for _, imp := range children {
			g.Edges[item.location] = appendUnique(g.Edges[item.location], imp.Location)
		}
		// push in reverse so imports are processed in source order
		for _, imp := range slices.Backward(children) {
			chain := append(slices.Clone(item.chain), imp.Location)
			work = append(work, workItem{location: imp.Location, kind: imp.Kind, chain: chain})
		}
	}
	slog.Debug("imports analyzed", "path", entry, "files", len(g.Files), "headers", len(g.Headers), "cached", r.summaries.Len())
	return g, nil
}

// fileImports tokenizes one file on its own and resolves its top-level
// import statements.
func (r *Resolver) fileImports(text, location string) ([]ast.Import, error) {
	var opts []lexer.Option
	if r.LenientEOF {
		opts = append(opts, lexer.WithLenientEOF())
	}
	tokens, err := lexer.New(opts...).TokenizeSingle(text, location)
	if err != nil {
		return nil, err
	}

	var out []ast.Import
	depth := 0
	for i := 0; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth = max(depth-1, 0)
		}
		if tokens[i].Type != token.IMPORT || depth > 0 || i+1 >= len(tokens) || tokens[i+1].Type != token.STRING_LITERAL {
			continue
		}
		end := i + 2
		if end < len(tokens) && tokens[end].Type == token.SEMICOLON {
			end++
		}
		imports, err := r.ResolveAll(tokens[i:end], location)
		if err != nil {
			return nil, err
		}
		out = append(out, imports...)
		i = end - 1
	}
	return out, nil
}

func notFound(item workItem) error {
	return diagnostics.Errorf(diagnostics.ErrImportNotFound, token.Token{}, "import %s not found", token.DisplayPath(item.location)).
		WithChain(item.chain)
}

func withChain(err error, chain []string) error {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) && len(de.Chain) == 0 {
		de.WithChain(chain)
	}
	return err
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
