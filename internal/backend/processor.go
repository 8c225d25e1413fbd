package backend

import (
	"log/slog"

	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/pipeline"
)

// EmitProcessor runs a Backend as the last pipeline stage.
type EmitProcessor struct {
	Backend Backend
}

// NewEmitProcessor creates a new pipeline step for the given backend
func NewEmitProcessor(b Backend) *EmitProcessor {
	return &EmitProcessor{Backend: b}
}

func (p *EmitProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// Never emit anything for a program that failed a check.
	if ctx.Program == nil || ctx.Failed() || p.Backend == nil {
		return ctx
	}

	if err := p.Backend.Emit(ctx); err != nil {
		return ctx.Fail(diagnostics.Wrap(err, diagnostics.ErrInternal, "backend "+p.Backend.Name()+" failed"))
	}
	slog.Debug("backend finished", "build", ctx.BuildID, "backend", p.Backend.Name())
	return ctx
}
