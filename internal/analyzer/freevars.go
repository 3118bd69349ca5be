// Package analyzer computes, for every nested function expression, the set
// of enclosing-scope bindings it reads: its captures. Captures are reported
// in first-use order, which must stay stable across runs because the lifted
// parameter order is derived from it.
package analyzer

import (
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/token"
	"github.com/funvibe/liftc/internal/typesystem"
)

// scopeFrame is one link of the lexical scope chain: the bindings one
// function body has introduced so far (parameters and lets).
type scopeFrame struct {
	names map[string]typesystem.Type
}

func newFrame() *scopeFrame {
	return &scopeFrame{names: make(map[string]typesystem.Type)}
}

func (f *scopeFrame) bind(name string, typ typesystem.Type) {
	f.names[name] = typ
}

func (f *scopeFrame) unbind(name string) {
	delete(f.names, name)
}

func (f *scopeFrame) lookup(name string) (typesystem.Type, bool) {
	t, ok := f.names[name]
	return t, ok
}

// Analyzer walks a program and records capture sets. It is purely
// informational: the AST is never modified.
type Analyzer struct {
	moduleFuncs map[string]bool
	captures    ir.CaptureInfo
	errors      []*diagnostics.DiagnosticError
}

func New() *Analyzer {
	return &Analyzer{
		moduleFuncs: make(map[string]bool),
		captures:    make(ir.CaptureInfo),
	}
}

// Analyze computes capture sets for every function literal in the program.
// Unresolved references are reported as diagnostics; analysis of the
// remaining functions continues.
func (a *Analyzer) Analyze(p *ast.Program) (ir.CaptureInfo, []*diagnostics.DiagnosticError) {
	for _, fn := range p.Functions {
		a.moduleFuncs[fn.Name] = true
	}

	for _, fn := range p.Functions {
		frame := newFrame()
		for _, param := range fn.Params {
			frame.bind(param.Name, param.Typ)
		}
		a.walk(fn.Body, frame, nil, nil)
	}
	if p.Main != nil {
		a.walk(p.Main, newFrame(), nil, nil)
	}

	return a.captures, a.errors
}

// walk traverses one function body. local holds the bindings of the function
// being walked, chain the enclosing frames (innermost first). caps, when
// non-nil, is the capture list of the nested function currently being
// analyzed; the top-level walk passes nil since module functions capture
// nothing.
func (a *Analyzer) walk(e ast.Expression, local *scopeFrame, chain []*scopeFrame, caps *[]ir.Capture) {
	switch ex := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.BoolLiteral:

	case *ast.Identifier:
		a.resolve(ex.Name, ex.Token, local, chain, caps)

	case *ast.Binary:
		a.walk(ex.Left, local, chain, caps)
		a.walk(ex.Right, local, chain, caps)

	case *ast.If:
		a.walk(ex.Cond, local, chain, caps)
		a.walk(ex.Then, local, chain, caps)
		a.walk(ex.Else, local, chain, caps)

	case *ast.Let:
		a.walk(ex.Value, local, chain, caps)
		shadowed, wasBound := local.lookup(ex.Name)
		local.bind(ex.Name, ex.Value.Type())
		a.walk(ex.In, local, chain, caps)
		if wasBound {
			local.bind(ex.Name, shadowed)
		} else {
			local.unbind(ex.Name)
		}

	case *ast.Call:
		a.walk(ex.Callee, local, chain, caps)
		for _, arg := range ex.Args {
			a.walk(arg, local, chain, caps)
		}

	case *ast.FunctionLiteral:
		// Analyze the nested function first (innermost-first), then treat
		// each of its captures as a use at the literal's position: whatever
		// the current function does not bind itself propagates outward.
		inner := a.analyzeLiteral(ex, append([]*scopeFrame{local}, chain...))
		for _, c := range inner {
			a.resolve(c.Name, c.Token, local, chain, caps)
		}
	}
}

// analyzeLiteral computes the capture set of one nested function given its
// enclosing scope chain.
func (a *Analyzer) analyzeLiteral(lit *ast.FunctionLiteral, chain []*scopeFrame) []ir.Capture {
	frame := newFrame()
	for _, param := range lit.Params {
		frame.bind(param.Name, param.Typ)
	}

	var caps []ir.Capture
	a.walk(lit.Body, frame, chain, &caps)
	a.captures[lit] = caps
	return caps
}

// resolve classifies one name use: locally bound, a capture from the chain,
// a module-level function, or unresolved.
func (a *Analyzer) resolve(name string, tok token.Token, local *scopeFrame, chain []*scopeFrame, caps *[]ir.Capture) {
	if _, ok := local.lookup(name); ok {
		return
	}

	for depth, frame := range chain {
		if t, ok := frame.lookup(name); ok && caps != nil {
			a.addCapture(caps, name, t, depth, tok)
			return
		} else if ok {
			return
		}
	}

	if a.moduleFuncs[name] {
		return
	}

	a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrF001, tok, name))
}

// addCapture appends a capture unless the name is already recorded,
// preserving first-use order.
func (a *Analyzer) addCapture(caps *[]ir.Capture, name string, typ typesystem.Type, depth int, tok token.Token) {
	for _, c := range *caps {
		if c.Name == name {
			return
		}
	}
	*caps = append(*caps, ir.Capture{
		Name:  name,
		Typ:   typ,
		Depth: depth,
		Token: tok,
	})
}
