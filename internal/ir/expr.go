package ir

import (
	"math"

	"github.com/funvibe/liftc/internal/typesystem"
)

// Expr is a lowered expression. The three call shapes (Call, AllocClosure,
// Populate) are the abstract operations the backend emitter consumes; the
// rest is the scalar plumbing around them.
type Expr interface {
	exprNode()
}

// Const is an immediate scalar value, stored as raw bits.
type Const struct {
	Typ  typesystem.Scalar
	Bits uint64
}

func (*Const) exprNode() {}

// ConstI64 builds an integer constant.
func ConstI64(v int64) *Const {
	return &Const{Typ: typesystem.I64, Bits: uint64(v)}
}

// ConstF64 builds a float constant.
func ConstF64(v float64) *Const {
	return &Const{Typ: typesystem.F64, Bits: math.Float64bits(v)}
}

// ConstBool builds a boolean constant.
func ConstBool(v bool) *Const {
	var bits uint64
	if v {
		bits = 1
	}
	return &Const{Typ: typesystem.Bool, Bits: bits}
}

// Local reads a frame slot. Parameters occupy slots 0..arity-1 in parameter
// order; let bindings take the slots above them.
type Local struct {
	Slot int
	Name string // For disassembly only
}

func (*Local) exprNode() {}

// Bind evaluates Value into a frame slot, then evaluates In with the slot
// visible.
type Bind struct {
	Slot  int
	Name  string
	Value Expr
	In    Expr
}

func (*Bind) exprNode() {}

// Binary is a scalar arithmetic, comparison or logical operation.
type Binary struct {
	Op    string
	Typ   typesystem.Scalar // Operand type
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// If is a conditional.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}

// Call is a statically saturated call: the callee's full arity is supplied
// in one expression, so no closure record is allocated.
type Call struct {
	Index int
	Args  []Expr
}

func (*Call) exprNode() {}

// AllocClosure produces a function value: it allocates a closure record for
// the callee, stores the table index and initial remaining arity, and
// reverse-fills the already-known arguments. Yields the record's address.
type AllocClosure struct {
	Index int
	Args  []Expr // len(Args) <= callee arity; may be empty
}

func (*AllocClosure) exprNode() {}

// Populate supplies one more argument to an existing closure record. If the
// record saturates, the final indirect call fires and Populate yields its
// result; otherwise it yields the record's address.
//
// A nil Arg is the degenerate zero-argument application: nothing is stored,
// only the dispatch check runs, so a record born saturated can be invoked.
type Populate struct {
	Target Expr
	Arg    Expr
}

func (*Populate) exprNode() {}
