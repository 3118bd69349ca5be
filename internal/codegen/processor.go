package codegen

import (
	"log/slog"

	"github.com/funvibe/liftc/internal/pipeline"
)

// Processor runs call-site compilation as a pipeline stage.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Table == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	compiler := New(ctx.Lifted, ctx.Table)
	mod, errors := compiler.Compile(ctx.AstRoot)
	ctx.Errors = append(ctx.Errors, errors...)
	if len(errors) == 0 {
		ctx.Module = mod
	}

	stats := compiler.Stats()
	slog.Debug("call site compilation complete",
		"file", ctx.FilePath,
		"direct", stats.Direct,
		"construct", stats.Construct,
		"populate", stats.Populate,
		"errors", len(errors))
	return ctx
}
