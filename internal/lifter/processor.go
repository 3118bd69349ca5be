package lifter

import (
	"log/slog"

	"github.com/funvibe/liftc/internal/pipeline"
	"github.com/funvibe/liftc/internal/table"
)

// Processor runs lambda lifting and table allocation as a pipeline stage.
// Lifting never proceeds past unresolved captures.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	tbl := table.New()
	lifted := New(ctx.Captures, tbl).Lift(ctx.AstRoot)
	tbl.Stabilize(ctx.IndexHints)

	ctx.Table = tbl
	ctx.Lifted = lifted

	slog.Debug("lambda lifting complete",
		"file", ctx.FilePath,
		"table_entries", tbl.Len(),
		"literal_sites", len(lifted.ByLiteral),
		"declared", len(lifted.ByName))
	return ctx
}
