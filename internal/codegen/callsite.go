package codegen

import (
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/token"
	"github.com/funvibe/liftc/internal/typesystem"
)

// compileCall classifies one application expression.
//
//   - Direct: the callee is statically known and the site supplies its full
//     arity at once; no record is allocated.
//   - Construct: the callee is statically known but fewer arguments than its
//     arity are supplied; a closure record is built.
//   - Populate: the callee position is itself an expression producing a
//     closure record; each argument is fed to the record and the final call
//     fires the moment remaining arity reaches zero.
//
// There is no fourth state.
func (c *Compiler) compileCall(call *ast.Call) ir.Expr {
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		if _, isLocal := c.resolveLocal(callee.Name); !isLocal {
			if def, ok := c.lifted.ByName[callee.Name]; ok {
				return c.compileKnownCall(call, def, nil)
			}
		}

	case *ast.FunctionLiteral:
		// Calling a literal in place: the captures count as statically
		// supplied leading arguments, so the site may still saturate the
		// lifted function in one go.
		if def := c.lifted.ByLiteral[callee]; def != nil {
			return c.compileKnownCall(call, def, c.captureReads(def))
		}
	}

	return c.compilePopulateCall(call)
}

// compileKnownCall lowers a call whose callee resolved to a table entry at
// compile time. leading holds the capture reads when the callee is a lifted
// literal applied at its definition site.
func (c *Compiler) compileKnownCall(call *ast.Call, def *ir.FunctionDefinition, leading []ir.Expr) ir.Expr {
	args := make([]ir.Expr, 0, len(leading)+len(call.Args))
	args = append(args, leading...)
	for _, a := range call.Args {
		args = append(args, c.compileExpr(a))
	}

	arity := def.Arity()
	switch {
	case len(args) == arity:
		c.stats.Direct++
		return &ir.Call{Index: def.Index, Args: args}

	case len(args) < arity:
		c.stats.Construct++
		return c.emitClosure(def, args, call.Token)

	default:
		// More arguments than the callee takes. When the callee returns a
		// function the surplus feeds the returned closure; otherwise it is
		// an arity mismatch.
		if _, resumable := def.Body.Type().(typesystem.Function); !resumable {
			c.reportOverApplication(call.Token, len(args), arity)
			return &ir.Call{Index: def.Index, Args: args[:arity]}
		}
		c.stats.Direct++
		var target ir.Expr = &ir.Call{Index: def.Index, Args: args[:arity]}
		for _, extra := range args[arity:] {
			c.stats.Populate++
			target = &ir.Populate{Target: target, Arg: extra}
		}
		return target
	}
}

// compilePopulateCall lowers a call whose callee is a closure-valued
// expression: one populate per argument, chained so that a saturation in
// the middle of the chain invokes and the following arguments apply to the
// invoked result.
func (c *Compiler) compilePopulateCall(call *ast.Call) ir.Expr {
	ft, ok := call.Callee.Type().(typesystem.Function)
	if !ok {
		c.errors = append(c.errors, diagnostics.NewError(
			diagnostics.ErrC002, call.Token, typeName(call.Callee.Type())))
		return ir.ConstI64(0)
	}

	// Statically detectable over-application: more arguments than the
	// callee's remaining arity, with no function result to absorb the rest.
	if len(call.Args) > len(ft.Params) {
		if _, resumable := ft.Result.(typesystem.Function); !resumable {
			c.reportOverApplication(call.Token, len(call.Args), len(ft.Params))
		}
	}

	target := c.compileExpr(call.Callee)
	if len(call.Args) == 0 {
		// Zero-argument application of a function value: nothing to store,
		// just the dispatch check against the record.
		c.stats.Populate++
		return &ir.Populate{Target: target}
	}
	for _, a := range call.Args {
		c.stats.Populate++
		target = &ir.Populate{Target: target, Arg: c.compileExpr(a)}
	}
	return target
}

func (c *Compiler) reportOverApplication(tok token.Token, supplied, arity int) {
	c.errors = append(c.errors, diagnostics.NewError(diagnostics.ErrC001, tok, supplied, arity))
}

func typeName(t typesystem.Type) string {
	if t == nil {
		return "Unknown"
	}
	return t.String()
}
