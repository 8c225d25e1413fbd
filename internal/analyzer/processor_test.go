package analyzer

import (
	"testing"

	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/lexer"
	"github.com/funvibe/surf/internal/parser"
	"github.com/funvibe/surf/internal/pipeline"
)

func processorContext(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input)
	tokens, err := lexer.New().TokenizeSingle(input, "main.surf")
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	ctx.Program, err = parser.Extract(tokens, input, nil)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	return ctx
}

func TestProcessorUsesImportedSummaries(t *testing.T) {
	input := "fun make() -> &Box<num> { return Heap(1).unwrap(); }\nfun main() { let someValue: Box<num> = make(); }"

	ctx := processorContext(t, input)
	ctx.Summaries = stdHeaders
	ctx = (&SemanticAnalyzerProcessor{}).Process(ctx)
	if ctx.Failed() {
		t.Fatalf("unexpected error: %v", ctx.Err())
	}
	if len(ctx.Warnings) != 1 || ctx.Warnings[0].Code != diagnostics.WarnNaming {
		t.Errorf("expected one naming warning, got %v", ctx.Warnings)
	}

	// without summaries Box is unknown
	ctx = (&SemanticAnalyzerProcessor{}).Process(processorContext(t, input))
	if !diagnostics.IsCode(ctx.Err(), diagnostics.ErrUnknownType) {
		t.Errorf("expected UnknownType, got %v", ctx.Err())
	}
}

func TestProcessorSkipsWithoutProgram(t *testing.T) {
	ctx := (&SemanticAnalyzerProcessor{}).Process(pipeline.NewPipelineContext(""))
	if ctx.Failed() {
		t.Errorf("unexpected error: %v", ctx.Err())
	}
}
