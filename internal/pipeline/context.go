package pipeline

import (
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/table"
)

// Processor is a single lowering stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext threads the artifacts of the lowering stages. Each stage
// reads what earlier stages produced and fills in its own fields; errors
// accumulate across stages.
type PipelineContext struct {
	FilePath string
	AstRoot  *ast.Program

	Errors []*diagnostics.DiagnosticError

	// IndexHints seeds table index assignment from the build cache, keyed
	// by structural identity. May be nil.
	IndexHints map[string]int

	Captures ir.CaptureInfo // Free variable analysis output
	Lifted   *ir.Lifted     // Lambda lifting output
	Table    *table.Table   // Allocated function table
	Module   *ir.Module     // Final lowered module
}

// NewPipelineContext creates a context for one program.
func NewPipelineContext(program *ast.Program) *PipelineContext {
	ctx := &PipelineContext{AstRoot: program}
	if program != nil {
		ctx.FilePath = program.File
	}
	return ctx
}
