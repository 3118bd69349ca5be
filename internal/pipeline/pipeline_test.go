package pipeline

import (
	"testing"

	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/token"
)

type recordingStage struct {
	ran  *[]string
	name string
	fail bool
}

func (s *recordingStage) Process(ctx *PipelineContext) *PipelineContext {
	*s.ran = append(*s.ran, s.name)
	if s.fail {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrF001, token.Token{}, s.name))
	}
	return ctx
}

func TestStagesRunInOrder(t *testing.T) {
	var ran []string
	ctx := New(
		&recordingStage{ran: &ran, name: "first"},
		&recordingStage{ran: &ran, name: "second"},
	).Run(NewPipelineContext(nil))

	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Fatalf("unexpected stage order %v", ran)
	}
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
}

func TestLaterStagesStillRunAfterErrors(t *testing.T) {
	// Diagnostics from every stage should reach the user in one build.
	var ran []string
	ctx := New(
		&recordingStage{ran: &ran, name: "failing", fail: true},
		&recordingStage{ran: &ran, name: "after"},
	).Run(NewPipelineContext(nil))

	if len(ran) != 2 {
		t.Fatalf("stage after a failure did not run: %v", ran)
	}
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected 1 accumulated error, got %d", len(ctx.Errors))
	}
}
