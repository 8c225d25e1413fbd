// Package backend hands a validated program to a code generator.
// The front end ships a single backend that writes the program model to disk.
package backend

import (
	"github.com/funvibe/surf/internal/pipeline"
)

// Backend consumes a program that passed every check.
type Backend interface {
	// Emit produces the backend's output for the program in ctx.
	Emit(ctx *pipeline.PipelineContext) error

	// Name returns the backend name for display
	Name() string
}
