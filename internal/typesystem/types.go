package typesystem

import "strings"

// Type is the interface for all types in our system. The front-end hands us
// fully resolved, monomorphic types; there are no type variables left by the
// time lowering runs.
type Type interface {
	String() string
	typeNode()
}

// Scalar is one of the target's native value types.
type Scalar int

const (
	I64 Scalar = iota // 64-bit integer
	F64               // 64-bit float
	Bool
)

func (s Scalar) typeNode() {}

func (s Scalar) String() string {
	switch s {
	case I64:
		return "I64"
	case F64:
		return "F64"
	case Bool:
		return "Bool"
	}
	return "Unknown"
}

// Function is the type of a function value. At runtime a value of this type
// is the address of a closure record.
type Function struct {
	Params []Type
	Result Type
}

func (f Function) typeNode() {}

func (f Function) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") -> ")
	if f.Result != nil {
		sb.WriteString(f.Result.String())
	} else {
		sb.WriteString("Unknown")
	}
	return sb.String()
}

// Arity returns the number of parameters of a function type, or -1 when the
// type is not a function.
func Arity(t Type) int {
	if f, ok := t.(Function); ok {
		return len(f.Params)
	}
	return -1
}

// Equal reports structural equality of two types.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Scalar:
		bt, ok := b.(Scalar)
		return ok && at == bt
	case Function:
		bt, ok := b.(Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Result, bt.Result)
	}
	return false
}
