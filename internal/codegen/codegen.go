// Package codegen lowers analyzed, lifted function bodies into the abstract
// operations the backend emitter consumes. Every application expression
// becomes exactly one of three shapes: a saturated direct call, a closure
// construction, or a population of an existing closure.
package codegen

import (
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/table"
	"github.com/funvibe/liftc/internal/typesystem"
	"github.com/google/uuid"
)

// local tracks one bound name during body lowering.
type local struct {
	Name string
	Slot int
}

// Stats counts how call sites were classified, for logging.
type Stats struct {
	Direct    int
	Construct int
	Populate  int
}

// Compiler lowers one program. Bodies are lowered independently; the
// function table is read-only by the time Compile runs.
type Compiler struct {
	lifted *ir.Lifted
	tbl    *table.Table

	locals     []local
	localCount int
	frameSize  int

	stats  Stats
	errors []*diagnostics.DiagnosticError
}

func New(lifted *ir.Lifted, tbl *table.Table) *Compiler {
	return &Compiler{lifted: lifted, tbl: tbl}
}

// Compile lowers every registered function body plus the entry expression
// and assembles the final module.
func (c *Compiler) Compile(p *ast.Program) (*ir.Module, []*diagnostics.DiagnosticError) {
	funcs := c.tbl.Funcs()
	for _, def := range funcs {
		c.beginFunction(def)
		def.Code = c.compileExpr(def.Body)
		def.FrameSize = c.frameSize
	}

	mod := &ir.Module{
		BuildID: uuid.NewString(),
		Funcs:   funcs,
	}

	if p.Main != nil {
		c.beginFunction(nil)
		mod.Main = c.compileExpr(p.Main)
		mod.MainFrameSize = c.frameSize
	}

	return mod, c.errors
}

// Stats returns the call-site classification counters.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// beginFunction resets per-body state. Parameters (captures first, then the
// original parameters) occupy the leading frame slots.
func (c *Compiler) beginFunction(def *ir.FunctionDefinition) {
	c.locals = c.locals[:0]
	c.localCount = 0
	c.frameSize = 0
	if def == nil {
		return
	}
	for _, p := range def.Params {
		c.addLocal(p.Name)
	}
}

func (c *Compiler) addLocal(name string) int {
	slot := c.localCount
	c.locals = append(c.locals[:c.localCount], local{Name: name, Slot: slot})
	c.localCount++
	if c.localCount > c.frameSize {
		c.frameSize = c.localCount
	}
	return slot
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := c.localCount - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return c.locals[i].Slot, true
		}
	}
	return 0, false
}

func (c *Compiler) compileExpr(e ast.Expression) ir.Expr {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return ir.ConstI64(ex.Value)
	case *ast.FloatLiteral:
		return ir.ConstF64(ex.Value)
	case *ast.BoolLiteral:
		return ir.ConstBool(ex.Value)

	case *ast.Identifier:
		if slot, ok := c.resolveLocal(ex.Name); ok {
			return &ir.Local{Slot: slot, Name: ex.Name}
		}
		if def, ok := c.lifted.ByName[ex.Name]; ok {
			// A function named as a value without being called: construct a
			// closure record with zero supplied arguments.
			return c.emitClosure(def, nil, ex.Token)
		}
		// Unreachable on analyzed programs.
		return ir.ConstI64(0)

	case *ast.Binary:
		operand := typesystem.I64
		if sc, ok := ex.Left.Type().(typesystem.Scalar); ok {
			operand = sc
		}
		return &ir.Binary{
			Op:    ex.Op,
			Typ:   operand,
			Left:  c.compileExpr(ex.Left),
			Right: c.compileExpr(ex.Right),
		}

	case *ast.If:
		return &ir.If{
			Cond: c.compileExpr(ex.Cond),
			Then: c.compileExpr(ex.Then),
			Else: c.compileExpr(ex.Else),
		}

	case *ast.Let:
		value := c.compileExpr(ex.Value)
		slot := c.addLocal(ex.Name)
		in := c.compileExpr(ex.In)
		c.localCount--
		return &ir.Bind{Slot: slot, Name: ex.Name, Value: value, In: in}

	case *ast.FunctionLiteral:
		// A nested function used as a value: allocate its closure record
		// with the captures stored up front.
		def := c.lifted.ByLiteral[ex]
		if def == nil {
			return ir.ConstI64(0)
		}
		return c.emitClosure(def, c.captureReads(def), ex.Token)

	case *ast.Call:
		return c.compileCall(ex)
	}
	return ir.ConstI64(0)
}

// captureReads compiles the capture list of a lifted function into reads of
// the enclosing frame, in capture order. These become the leading arguments
// of the construction site.
func (c *Compiler) captureReads(def *ir.FunctionDefinition) []ir.Expr {
	if len(def.FreeVars) == 0 {
		return nil
	}
	reads := make([]ir.Expr, 0, len(def.FreeVars))
	for _, cap := range def.FreeVars {
		slot, ok := c.resolveLocal(cap.Name)
		if !ok {
			// The analyzer guarantees the capture is bound here.
			slot = 0
		}
		reads = append(reads, &ir.Local{Slot: slot, Name: cap.Name})
	}
	return reads
}
