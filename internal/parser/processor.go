package parser

import (
	"log/slog"

	"github.com/funvibe/surf/internal/pipeline"
)

type ParserProcessor struct {
	Resolver ImportResolver
}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	fc, err := Extract(ctx.TokenStream, ctx.SourceCode, pp.Resolver)
	if err != nil {
		return ctx.Fail(err)
	}
	fc.BuildID = ctx.BuildID
	fc.Path = ctx.FilePath

	// Spliced files are part of the program even though their import
	// statements no longer appear in the stream.
	for _, imp := range ctx.Spliced {
		fc.AddImport(imp)
	}

	ctx.Program = fc
	slog.Debug("extracted", "build", ctx.BuildID, "path", ctx.FilePath, "functions", len(fc.Functions), "imports", len(fc.Imports))
	return ctx
}
