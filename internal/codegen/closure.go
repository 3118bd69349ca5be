package codegen

import (
	"fmt"

	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/token"
)

// emitClosure emits the construction of a closure record for def with k
// statically known arguments, k <= arity. The backend expands the abstract
// operation into:
//
//  1. the callee's table index (a compile-time constant),
//  2. an allocation of ir.RecordSize(arity) bytes,
//  3. header stores: the index, then the remaining arity,
//  4. per known argument, in parameter order: spill the value to a fresh
//     cell, store the cell's address at ir.SlotOffset(remaining) and
//     decrement remaining, so each store targets the next free slot,
//  5. the record's address as the resulting value.
//
// k == arity only happens when a zero-parameter function (or a literal whose
// arity is all captures) is taken as a value; the record is then born
// saturated and waits for a zero-argument application to dispatch it.
func (c *Compiler) emitClosure(def *ir.FunctionDefinition, args []ir.Expr, tok token.Token) ir.Expr {
	if len(args) > def.Arity() {
		// The call-site compiler never constructs past the arity; this is a
		// compiler defect, not a user error.
		panic(fmt.Sprintf("[M001] closure construction for %s with %d args exceeds arity %d at %s",
			def.Name, len(args), def.Arity(), tok.Pos()))
	}
	return &ir.AllocClosure{Index: def.Index, Args: args}
}
