package analyzer

import (
	"log/slog"

	"github.com/funvibe/liftc/internal/pipeline"
)

// Processor runs free variable analysis as a pipeline stage.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}

	captures, errors := New().Analyze(ctx.AstRoot)
	ctx.Captures = captures
	ctx.Errors = append(ctx.Errors, errors...)

	slog.Debug("free variable analysis complete",
		"file", ctx.FilePath,
		"nested_functions", len(captures),
		"errors", len(errors))
	return ctx
}
