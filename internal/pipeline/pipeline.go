package pipeline

import "log/slog"

// Processor is a single stage of the front end.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages build on the guarantees of the previous
// ones, so the run stops at the first stage that reports an error.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.Failed() {
			slog.Debug("pipeline stopped", "build", ctx.BuildID, "path", ctx.FilePath, "code", ctx.Errors[0].Code)
			break
		}
	}
	return ctx
}
