package pipeline

import (
	"github.com/google/uuid"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
	"github.com/funvibe/surf/internal/token"
)

// PipelineContext carries the state of one compilation unit through the stages.
type PipelineContext struct {
	BuildID    string
	SourceCode string
	FilePath   string
	Config     *config.Config

	// Produced by the lexer stage.
	TokenStream []token.Token
	Spliced     []ast.Import

	// Produced by the parser stage.
	Program *ast.FileCode

	// Produced by the import stage: every file reached from the entry point,
	// the import edges between them and the summaries of foreign headers.
	Files        []string
	Dependencies map[string][]string
	Headers      map[string]*ext.Summary
	// Summaries holds the header summaries in the order the headers were reached.
	Summaries ext.Set

	Errors   []*diagnostics.DiagnosticError
	Warnings []*diagnostics.DiagnosticError
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{
		BuildID:    uuid.NewString(),
		SourceCode: sourceCode,
		Config:     config.Default(),
		Headers:    make(map[string]*ext.Summary),
	}
}

// Fail records err as a diagnostic. Non-diagnostic errors are wrapped.
func (ctx *PipelineContext) Fail(err error) *PipelineContext {
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.As(err))
	}
	return ctx
}

// Failed reports whether any stage has reported an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// Err returns the first recorded error, or nil.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
