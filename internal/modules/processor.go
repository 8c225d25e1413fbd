package modules

import (
	"github.com/funvibe/surf/internal/pipeline"
)

// ImportProcessor adds the prelude to the program and walks its import
// graph, collecting header summaries for the analyzer.
type ImportProcessor struct {
	Resolver *Resolver
}

func (ip *ImportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}

	prelude, err := ip.Resolver.PreludeImports()
	if err != nil {
		return ctx.Fail(err)
	}
	for _, imp := range prelude {
		ctx.Program.AddImport(imp)
	}

	graph, err := ip.Resolver.AnalyzeImports(ctx.Program)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.Files = graph.Files
	ctx.Dependencies = graph.Edges
	ctx.Headers = graph.Headers
	ctx.Summaries = graph.Summaries()
	return ctx
}
