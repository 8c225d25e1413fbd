package lexer

import (
	"log/slog"

	"github.com/funvibe/surf/internal/pipeline"
)

// LexerProcessor tokenizes the entry file and splices its source imports.
type LexerProcessor struct {
	Locator ImportLocator
}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	var opts []Option
	if lp.Locator != nil {
		opts = append(opts, WithLocator(lp.Locator))
	}
	if ctx.Config != nil && ctx.Config.Lexer.LenientEOF {
		opts = append(opts, WithLenientEOF())
	}

	l := New(opts...)
	tokens, err := l.Tokenize(ctx.SourceCode, ctx.FilePath)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.TokenStream = tokens
	ctx.Spliced = l.Spliced()
	slog.Debug("tokenized", "build", ctx.BuildID, "path", ctx.FilePath, "tokens", len(tokens), "spliced", len(ctx.Spliced))
	return ctx
}
