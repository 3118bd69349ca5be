// Package ir holds the data model shared by the lowering stages: captured
// variables, module-level function definitions, the lowered instruction
// forms, and the closure record memory layout contract.
package ir

import (
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/token"
	"github.com/funvibe/liftc/internal/typesystem"
)

// Closure record memory layout. A record is a header followed by one
// argument-address slot per original parameter:
//
//	addr+0  u32  function table index
//	addr+4  u32  remaining arity
//	addr+8  u32  argument address slots, arity * SlotSize bytes
//
// Slots fill from the high end toward the low end as arguments arrive: the
// first logical parameter's address lands in the slot furthest from the
// header. Argument values themselves live in fresh CellSize-byte memory
// cells; the record stores their addresses.
const (
	HeaderSize  = 8
	IndexOffset = 0
	ArityOffset = 4
	SlotSize    = 4
	CellSize    = 8 // one i64/f64/bool value cell
)

// RecordSize returns the allocation size of a closure record for a callee
// of the given arity.
func RecordSize(arity int) int {
	return HeaderSize + arity*SlotSize
}

// SlotOffset returns the record-relative offset of the slot the next
// argument goes to, given the remaining arity read before the store.
// remaining must be >= 1; remaining == 0 means the record is saturated and
// read-only.
func SlotOffset(remaining int) int {
	return HeaderSize + (remaining-1)*SlotSize
}

// Capture is an enclosing-scope binding a nested function reads. Captures
// are consumed while building the lifted parameter list; they are not part
// of any runtime state.
type Capture struct {
	Name  string
	Typ   typesystem.Type
	Depth int // Scope chain depth the binding originates from, 0 = innermost enclosing
	Token token.Token
}

// CaptureInfo maps every nested function expression to its ordered capture
// set, as computed by the free variable analyzer.
type CaptureInfo map[*ast.FunctionLiteral][]Capture

// FunctionDefinition is a module-level function: either declared at module
// scope by the front-end or relocated there by lambda lifting. Created once
// per distinct structural identity and never mutated after registration.
type FunctionDefinition struct {
	Name     string
	Identity string // Structural hash over the normalized signature and body
	Params   []*ast.Param
	FreeVars []Capture // Non-empty only for lifted functions
	Index    int       // Table index, assigned by the allocator

	Body ast.Expression // Input body; capture references resolve to leading params
	Code Expr           // Lowered body, set by the call-site compiler

	FrameSize int // Params plus let slots needed to execute Code
}

// Arity returns the full parameter count, captures included.
func (fd *FunctionDefinition) Arity() int {
	return len(fd.Params)
}

// Lifted is the lambda lifter's product: lookup tables from source syntax to
// the (possibly shared) module-level definitions it produced.
type Lifted struct {
	// ByLiteral maps each nested function expression to its lifted
	// definition. Structurally identical literals map to one definition.
	ByLiteral map[*ast.FunctionLiteral]*FunctionDefinition

	// ByName maps declared module-level function names to definitions.
	ByName map[string]*FunctionDefinition
}

// Module is the lowered artifact handed to the backend emitter: every
// function with a stable table index, the indirect-call table initializer,
// and the lowered entry expression.
type Module struct {
	BuildID string // UUID stamped at lowering time

	// Funcs is ordered by table index; Funcs[i].Index == i.
	Funcs []*FunctionDefinition

	Main          Expr // Lowered entry expression, nil for libraries
	MainFrameSize int
}

// Table returns the indirect-call table initializer: every function listed
// by index.
func (m *Module) Table() []int {
	table := make([]int, len(m.Funcs))
	for i := range m.Funcs {
		table[i] = m.Funcs[i].Index
	}
	return table
}
