// Package lifter relocates nested functions to module scope. A lifted
// function's parameter list is its captures followed by its original
// parameters, and its name is derived from a structural hash of the
// normalized signature and body, so syntactically identical functions
// arising from different sites collapse to one definition and one table
// slot.
package lifter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/table"
	"github.com/funvibe/liftc/internal/typesystem"
)

// Lifter walks a program, registering every module-level function (declared
// or lifted) in the function table.
type Lifter struct {
	captures    ir.CaptureInfo
	tbl         *table.Table
	moduleFuncs map[string]bool
	lifted      *ir.Lifted
}

func New(captures ir.CaptureInfo, tbl *table.Table) *Lifter {
	return &Lifter{
		captures:    captures,
		tbl:         tbl,
		moduleFuncs: make(map[string]bool),
		lifted: &ir.Lifted{
			ByLiteral: make(map[*ast.FunctionLiteral]*ir.FunctionDefinition),
			ByName:    make(map[string]*ir.FunctionDefinition),
		},
	}
}

// Lift registers all functions of the program. Declared functions keep their
// declaration order; nested functions are registered innermost-first as the
// canonicalizer reaches them. Must only run on a program whose captures all
// resolved.
func (l *Lifter) Lift(p *ast.Program) *ir.Lifted {
	for _, fn := range p.Functions {
		l.moduleFuncs[fn.Name] = true
	}

	for _, fn := range p.Functions {
		canon := l.canonFunction(fn.Params, fn.ReturnType, fn.Body)
		def := &ir.FunctionDefinition{
			Name:     fn.Name,
			Identity: identityOf(canon),
			Params:   fn.Params,
			Body:     fn.Body,
		}
		l.lifted.ByName[fn.Name] = l.tbl.Register(def, canon)
	}

	if p.Main != nil {
		sc := newScope(nil)
		l.canonExpr(p.Main, sc)
	}

	return l.lifted
}

// liftLiteral lifts one nested function: captures become leading parameters
// and the result is registered (or found) in the table. The call-site
// compiler resolves literal sites through the ir.Lifted maps afterwards.
func (l *Lifter) liftLiteral(lit *ast.FunctionLiteral, sc *scope) *ir.FunctionDefinition {
	if def, ok := l.lifted.ByLiteral[lit]; ok {
		return def
	}

	caps := l.captures[lit]
	params := make([]*ast.Param, 0, len(caps)+len(lit.Params))
	for _, c := range caps {
		params = append(params, &ast.Param{Name: c.Name, Typ: c.Typ})
	}
	params = append(params, lit.Params...)

	canon := l.canonFunction(params, lit.Typ.Result, lit.Body)
	identity := identityOf(canon)
	def := &ir.FunctionDefinition{
		Name:     "lambda_" + identity[:12],
		Identity: identity,
		Params:   params,
		FreeVars: caps,
		Body:     lit.Body,
	}
	def = l.tbl.Register(def, canon)
	l.lifted.ByLiteral[lit] = def
	return def
}

// scope assigns frame slot numbers to names during canonicalization, so
// structurally identical bodies normalize identically regardless of the
// names they use.
type scope struct {
	slots  map[string]int
	next   int
	parent *scope
}

func newScope(parent *scope) *scope {
	next := 0
	if parent != nil {
		next = parent.next
	}
	return &scope{slots: make(map[string]int), next: next, parent: parent}
}

func (s *scope) bind(name string) int {
	slot := s.next
	s.slots[name] = slot
	s.next++
	return slot
}

func (s *scope) lookup(name string) (int, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if slot, ok := sc.slots[name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// canonFunction renders the normalized form of a function: its signature
// followed by its body with every bound name replaced by a slot number.
func (l *Lifter) canonFunction(params []*ast.Param, result typesystem.Type, body ast.Expression) string {
	sc := newScope(nil)
	var sig strings.Builder
	sig.WriteString("(fn (")
	for i, p := range params {
		if i > 0 {
			sig.WriteString(" ")
		}
		sig.WriteString(p.Typ.String())
		sc.bind(p.Name)
	}
	sig.WriteString(" -> ")
	if result != nil {
		sig.WriteString(result.String())
	}
	sig.WriteString(") ")
	sig.WriteString(l.canonExpr(body, sc))
	sig.WriteString(")")
	return sig.String()
}

func (l *Lifter) canonExpr(e ast.Expression, sc *scope) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return fmt.Sprintf("(i64 %d)", ex.Value)
	case *ast.FloatLiteral:
		return fmt.Sprintf("(f64 %x)", ex.Value)
	case *ast.BoolLiteral:
		return fmt.Sprintf("(bool %v)", ex.Value)

	case *ast.Identifier:
		if slot, ok := sc.lookup(ex.Name); ok {
			return fmt.Sprintf("(l%d)", slot)
		}
		if l.moduleFuncs[ex.Name] {
			return fmt.Sprintf("(ref %s)", ex.Name)
		}
		// Unreachable on analyzed programs; keep the name so the defect is
		// visible in the canonical form rather than silently merged.
		return fmt.Sprintf("(unresolved %s)", ex.Name)

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s %s)", ex.Op, ex.Typ, l.canonExpr(ex.Left, sc), l.canonExpr(ex.Right, sc))

	case *ast.If:
		return fmt.Sprintf("(if %s %s %s)", l.canonExpr(ex.Cond, sc), l.canonExpr(ex.Then, sc), l.canonExpr(ex.Else, sc))

	case *ast.Let:
		value := l.canonExpr(ex.Value, sc)
		inner := newScope(sc)
		slot := inner.bind(ex.Name)
		return fmt.Sprintf("(let l%d %s %s)", slot, value, l.canonExpr(ex.In, inner))

	case *ast.Call:
		var sb strings.Builder
		sb.WriteString("(call ")
		sb.WriteString(l.canonExpr(ex.Callee, sc))
		for _, arg := range ex.Args {
			sb.WriteString(" ")
			sb.WriteString(l.canonExpr(arg, sc))
		}
		sb.WriteString(")")
		return sb.String()

	case *ast.FunctionLiteral:
		// Lift the nested function first, then normalize this site as a
		// reference to the lifted identity plus its capture reads.
		def := l.liftLiteral(ex, sc)
		var sb strings.Builder
		sb.WriteString("(lift ")
		sb.WriteString(def.Identity)
		for _, c := range def.FreeVars {
			sb.WriteString(" ")
			if slot, ok := sc.lookup(c.Name); ok {
				sb.WriteString(fmt.Sprintf("(l%d)", slot))
			} else {
				sb.WriteString(fmt.Sprintf("(unresolved %s)", c.Name))
			}
		}
		sb.WriteString(")")
		return sb.String()
	}
	return "(?)"
}

func identityOf(canon string) string {
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}
