package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/funvibe/surf/internal/analyzer"
	"github.com/funvibe/surf/internal/backend"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
	"github.com/funvibe/surf/internal/lexer"
	"github.com/funvibe/surf/internal/modules"
	"github.com/funvibe/surf/internal/parser"
	"github.com/funvibe/surf/internal/pipeline"
	"github.com/funvibe/surf/internal/token"
)

// Options tune a Driver beyond what surf.yaml says.
type Options struct {
	// ConfigPath is an explicit surf.yaml; empty searches upward from the entry file.
	ConfigPath string
	// Output overrides output.model from the configuration.
	Output string
	// Headers replaces the manifest reader used to summarize foreign headers.
	Headers ext.HeaderReader
}

// Driver owns everything shared between runs over one project: the
// configuration, the import resolver and the summary cache.
type Driver struct {
	Config   *config.Config
	Resolver *modules.Resolver

	store  *ext.Store
	output string
}

// NewDriver loads the configuration for entry and prepares a resolver.
func NewDriver(entry string, opts Options) (*Driver, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.Find(filepath.Dir(entry))
	}
	if err != nil {
		return nil, diagnostics.Wrap(err, diagnostics.ErrConfig, "invalid configuration")
	}

	d := &Driver{Config: cfg, output: cfg.ModelPath()}
	if opts.Output != "" {
		d.output = opts.Output
	}

	if path := cfg.CachePath(); path != "" {
		store, err := ext.Open(path)
		if err != nil {
			return nil, diagnostics.Wrap(err, diagnostics.ErrConfig, "cannot open the summary cache")
		}
		d.store = store
		slog.Debug("summary cache opened", "path", store.Path())
	}

	d.Resolver, err = modules.NewResolver(cfg, opts.Headers, d.store)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the summary cache.
func (d *Driver) Close() error {
	return d.store.Close()
}

// Check runs every stage over the file at path. The returned context holds
// the program, the diagnostics and the warnings.
func (d *Driver) Check(path string) *pipeline.PipelineContext {
	stages := d.frontEnd()
	stages = append(stages, &analyzer.SemanticAnalyzerProcessor{})
	if d.output != "" {
		stages = append(stages, backend.NewEmitProcessor(backend.NewModelWriter(d.output)))
	}
	return d.run(path, stages...)
}

// Imports runs the stages up to the import graph and returns the graph.
func (d *Driver) Imports(path string) (*modules.Graph, *pipeline.PipelineContext) {
	ctx := d.run(path, d.frontEnd()...)
	if ctx.Failed() {
		return nil, ctx
	}
	abs, _ := filepath.Abs(path)
	return &modules.Graph{
		Entry:   abs,
		Files:   ctx.Files,
		Edges:   ctx.Dependencies,
		Headers: ctx.Headers,
	}, ctx
}

// Tokens returns the spliced token stream of the file at path.
func (d *Driver) Tokens(path string) ([]token.Token, error) {
	ctx := d.run(path, d.lexerStage())
	return ctx.TokenStream, ctx.Err()
}

func (d *Driver) lexerStage() pipeline.Processor {
	return &lexer.LexerProcessor{Locator: d.Resolver}
}

func (d *Driver) frontEnd() []pipeline.Processor {
	return []pipeline.Processor{
		d.lexerStage(),
		&parser.ParserProcessor{Resolver: d.Resolver},
		&modules.ImportProcessor{Resolver: d.Resolver},
	}
}

func (d *Driver) run(path string, stages ...pipeline.Processor) *pipeline.PipelineContext {
	source, err := os.ReadFile(path)
	ctx := pipeline.NewPipelineContext(string(source))
	ctx.FilePath = path
	ctx.Config = d.Config
	if err != nil {
		return ctx.Fail(diagnostics.Wrap(err, diagnostics.ErrImportNotFound, fmt.Sprintf("cannot read %s", path)))
	}

	slog.Debug("run started", "build", ctx.BuildID, "path", path, "stages", len(stages))
	return pipeline.New(stages...).Run(ctx)
}
