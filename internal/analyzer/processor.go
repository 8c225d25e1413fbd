package analyzer

import (
	"github.com/funvibe/surf/internal/pipeline"
)

// SemanticAnalyzerProcessor runs the analyzer over ctx.Program with the
// header summaries collected by the import stage.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}

	a := New(ctx.Program, ctx.Summaries)
	if err := a.Analyze(); err != nil {
		return ctx.Fail(err)
	}
	ctx.Warnings = append(ctx.Warnings, a.Warnings()...)
	return ctx
}
