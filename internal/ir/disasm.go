package ir

import (
	"fmt"
	"math"
	"strings"

	"github.com/funvibe/liftc/internal/typesystem"
)

// Disassemble returns a human-readable representation of a lowered module.
func Disassemble(m *Module) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== module %s ==\n", m.BuildID))
	sb.WriteString(fmt.Sprintf("table (%d entries):\n", len(m.Funcs)))
	for _, fn := range m.Funcs {
		sb.WriteString(fmt.Sprintf("  [%d] %s/%d", fn.Index, fn.Name, fn.Arity()))
		if len(fn.FreeVars) > 0 {
			names := make([]string, len(fn.FreeVars))
			for i, c := range fn.FreeVars {
				names[i] = c.Name
			}
			sb.WriteString(fmt.Sprintf(" (lifted, captures %s)", strings.Join(names, ", ")))
		}
		sb.WriteString("\n")
	}

	for _, fn := range m.Funcs {
		sb.WriteString(fmt.Sprintf("\n== %s ==\n", fn.Name))
		disasmExpr(&sb, fn.Code, 1)
	}
	if m.Main != nil {
		sb.WriteString("\n== main ==\n")
		disasmExpr(&sb, m.Main, 1)
	}

	return sb.String()
}

func disasmExpr(sb *strings.Builder, e Expr, depth int) {
	indent := strings.Repeat("  ", depth)

	switch ex := e.(type) {
	case *Const:
		switch ex.Typ {
		case typesystem.F64:
			sb.WriteString(fmt.Sprintf("%sconst %g\n", indent, math.Float64frombits(ex.Bits)))
		case typesystem.Bool:
			sb.WriteString(fmt.Sprintf("%sconst %v\n", indent, ex.Bits != 0))
		default:
			sb.WriteString(fmt.Sprintf("%sconst %d\n", indent, int64(ex.Bits)))
		}

	case *Local:
		sb.WriteString(fmt.Sprintf("%slocal %d ; %s\n", indent, ex.Slot, ex.Name))

	case *Bind:
		sb.WriteString(fmt.Sprintf("%sbind %d ; %s\n", indent, ex.Slot, ex.Name))
		disasmExpr(sb, ex.Value, depth+1)
		disasmExpr(sb, ex.In, depth+1)

	case *Binary:
		sb.WriteString(fmt.Sprintf("%sbinop %s %s\n", indent, ex.Op, ex.Typ))
		disasmExpr(sb, ex.Left, depth+1)
		disasmExpr(sb, ex.Right, depth+1)

	case *If:
		sb.WriteString(indent + "if\n")
		disasmExpr(sb, ex.Cond, depth+1)
		disasmExpr(sb, ex.Then, depth+1)
		disasmExpr(sb, ex.Else, depth+1)

	case *Call:
		sb.WriteString(fmt.Sprintf("%scall %d\n", indent, ex.Index))
		for _, a := range ex.Args {
			disasmExpr(sb, a, depth+1)
		}

	case *AllocClosure:
		sb.WriteString(fmt.Sprintf("%salloc_closure %d args=%d\n", indent, ex.Index, len(ex.Args)))
		for _, a := range ex.Args {
			disasmExpr(sb, a, depth+1)
		}

	case *Populate:
		if ex.Arg == nil {
			sb.WriteString(indent + "populate ; dispatch only\n")
			disasmExpr(sb, ex.Target, depth+1)
			return
		}
		sb.WriteString(indent + "populate\n")
		disasmExpr(sb, ex.Target, depth+1)
		disasmExpr(sb, ex.Arg, depth+1)

	default:
		sb.WriteString(indent + "??\n")
	}
}
