package runtime

import (
	"strings"
	"testing"

	"github.com/funvibe/liftc/internal/analyzer"
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/codegen"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/lifter"
	"github.com/funvibe/liftc/internal/pipeline"
	"github.com/funvibe/liftc/internal/typesystem"
)

var (
	i64Fn1 = typesystem.Function{Params: []typesystem.Type{typesystem.I64}, Result: typesystem.I64}
	i64Fn2 = typesystem.Function{Params: []typesystem.Type{typesystem.I64, typesystem.I64}, Result: typesystem.I64}
	i64Fn3 = typesystem.Function{Params: []typesystem.Type{typesystem.I64, typesystem.I64, typesystem.I64}, Result: typesystem.I64}
)

func param(name string) *ast.Param {
	return &ast.Param{Name: name, Typ: typesystem.I64}
}

func num(v int64) *ast.IntLiteral {
	return &ast.IntLiteral{Value: v}
}

func ref(name string) *ast.Identifier {
	return &ast.Identifier{Name: name, Typ: typesystem.I64}
}

func typedRef(name string, t typesystem.Type) *ast.Identifier {
	return &ast.Identifier{Name: name, Typ: t}
}

func binop(op string, l, r ast.Expression) *ast.Binary {
	return &ast.Binary{Op: op, Left: l, Right: r, Typ: typesystem.I64}
}

func call(t typesystem.Type, callee ast.Expression, args ...ast.Expression) *ast.Call {
	return &ast.Call{Callee: callee, Args: args, Typ: t}
}

func lam(t typesystem.Function, body ast.Expression, params ...*ast.Param) *ast.FunctionLiteral {
	return &ast.FunctionLiteral{Params: params, Body: body, Typ: t}
}

func decl(name string, ret typesystem.Type, body ast.Expression, params ...*ast.Param) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{Name: name, Params: params, ReturnType: ret, Body: body}
}

func lower(t *testing.T, p *ast.Program) *ir.Module {
	t.Helper()
	ctx := pipeline.NewPipelineContext(p)
	ctx = pipeline.New(
		&analyzer.Processor{},
		&lifter.Processor{},
		&codegen.Processor{},
	).Run(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("lowering failed: %v", ctx.Errors[0])
	}
	if ctx.Module == nil {
		t.Fatalf("pipeline produced no module")
	}
	return ctx.Module
}

func run(t *testing.T, p *ast.Program) (Value, *Machine) {
	t.Helper()
	vm := NewMachine(lower(t, p), Options{DebugChecks: true})
	v, err := vm.Run()
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	return v, vm
}

func TestSaturatedCallRunsWithoutAllocation(t *testing.T) {
	// multiplyBy10(5): the classic case that must never touch memory.
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("multiplyBy10", typesystem.I64, binop("*", ref("n"), num(10)), param("n")),
		},
		Main: call(typesystem.I64, typedRef("multiplyBy10", i64Fn1), num(5)),
	}

	v, vm := run(t, p)
	if v.I64() != 50 {
		t.Fatalf("expected 50, got %d", v.I64())
	}
	if vm.Memory().Used() != 0 {
		t.Fatalf("saturated call allocated %d bytes", vm.Memory().Used())
	}
}

func TestReturnedClosureCarriesCapture(t *testing.T) {
	// createMultiplier(10) yields a record holding the captured factor with
	// one parameter still owed; applying it produces 50.
	inner := lam(i64Fn1, binop("*", ref("x"), ref("factor")), param("x"))
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("createMultiplier", i64Fn1, inner, param("factor")),
		},
		Main: call(typesystem.I64,
			typedRef("createMultiplier", typesystem.Function{
				Params: []typesystem.Type{typesystem.I64}, Result: i64Fn1,
			}),
			num(10)),
	}

	v, vm := run(t, p)
	if v.Kind != KindClosure {
		t.Fatalf("expected a closure value, got kind %d", v.Kind)
	}
	if rem := vm.Memory().RecordRemaining(v.Addr()); rem != 1 {
		t.Fatalf("expected remaining arity 1 after capture storage, got %d", rem)
	}

	applied, err := vm.CallFunction(vm.Memory().RecordIndex(v.Addr()), []Value{
		{Kind: KindI64, Bits: vm.Memory().ReadU64(vm.Memory().ArgAddresses(v.Addr(), 2)[0])},
		I64Value(5),
	})
	if err != nil {
		t.Fatalf("direct invocation of the lifted function failed: %v", err)
	}
	if applied.I64() != 50 {
		t.Fatalf("expected 50, got %d", applied.I64())
	}
}

func TestCurriedAndDirectApplicationAgree(t *testing.T) {
	add3 := func() *ast.FunctionDeclaration {
		return decl("add3", typesystem.I64,
			binop("+", ref("a"), binop("+", ref("b"), ref("c"))),
			param("a"), param("b"), param("c"))
	}

	direct := &ast.Program{
		Functions: []*ast.FunctionDeclaration{add3()},
		Main:      call(typesystem.I64, typedRef("add3", i64Fn3), num(1), num(2), num(3)),
	}

	curried := &ast.Program{
		Functions: []*ast.FunctionDeclaration{add3()},
		Main: &ast.Let{
			Name:  "f",
			Value: call(i64Fn2, typedRef("add3", i64Fn3), num(1)),
			In: &ast.Let{
				Name:  "g",
				Value: call(i64Fn1, typedRef("f", i64Fn2), num(2)),
				In:    call(typesystem.I64, typedRef("g", i64Fn1), num(3)),
			},
		},
	}

	mixed := &ast.Program{
		Functions: []*ast.FunctionDeclaration{add3()},
		Main: &ast.Let{
			Name:  "h",
			Value: call(i64Fn1, typedRef("add3", i64Fn3), num(1), num(2)),
			In:    call(typesystem.I64, typedRef("h", i64Fn1), num(3)),
		},
	}

	for name, p := range map[string]*ast.Program{
		"direct":  direct,
		"curried": curried,
		"mixed":   mixed,
	} {
		v, _ := run(t, p)
		if v.I64() != 6 {
			t.Fatalf("%s application: expected 6, got %d", name, v.I64())
		}
	}
}

func TestClosureCapturingClosure(t *testing.T) {
	// let add5 = (x) => x + 5 in let bump = (y) => add5(y) + 5 in bump(3):
	// the inner closure is captured by address and invoked through its slot.
	add5Lit := lam(i64Fn1, binop("+", ref("x"), num(5)), param("x"))
	bumpBody := binop("+",
		call(typesystem.I64, typedRef("add5", i64Fn1), ref("y")),
		num(5))
	bumpLit := lam(i64Fn1, bumpBody, param("y"))

	p := &ast.Program{
		Main: &ast.Let{
			Name:  "add5",
			Value: add5Lit,
			In: &ast.Let{
				Name:  "bump",
				Value: bumpLit,
				In:    call(typesystem.I64, typedRef("bump", i64Fn1), num(3)),
			},
		},
	}

	v, _ := run(t, p)
	if v.I64() != 13 {
		t.Fatalf("expected 13, got %d", v.I64())
	}
}

func TestTransitiveCaptureChain(t *testing.T) {
	// outer(a) = (x) => (y) => a + x + y; outer(1)(2)(3) must thread a
	// through two lifted functions.
	innermost := lam(i64Fn1, binop("+", ref("a"), binop("+", ref("x"), ref("y"))), param("y"))
	middle := lam(typesystem.Function{
		Params: []typesystem.Type{typesystem.I64}, Result: i64Fn1,
	}, innermost, param("x"))

	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("outer", middle.Typ, middle, param("a")),
		},
		Main: call(typesystem.I64,
			call(i64Fn1,
				call(middle.Typ, typedRef("outer", typesystem.Function{
					Params: []typesystem.Type{typesystem.I64}, Result: middle.Typ,
				}), num(1)),
				num(2)),
			num(3)),
	}

	v, _ := run(t, p)
	if v.I64() != 6 {
		t.Fatalf("expected 6, got %d", v.I64())
	}
}

func TestZeroArgumentApplicationDispatches(t *testing.T) {
	// A nullary function value: applying it with no arguments is a pure
	// dispatch check against an already-saturated record.
	thunkType := typesystem.Function{Result: typesystem.I64}
	thunk := lam(thunkType, num(42))

	p := &ast.Program{
		Main: &ast.Let{
			Name:  "t",
			Value: thunk,
			In:    call(typesystem.I64, typedRef("t", thunkType)),
		},
	}

	v, _ := run(t, p)
	if v.I64() != 42 {
		t.Fatalf("expected 42, got %d", v.I64())
	}
}

func TestConditionalSelectsBranch(t *testing.T) {
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("max", typesystem.I64,
				&ast.If{
					Cond: &ast.Binary{Op: ">", Left: ref("a"), Right: ref("b"), Typ: typesystem.Bool},
					Then: ref("a"),
					Else: ref("b"),
				},
				param("a"), param("b")),
		},
		Main: call(typesystem.I64, typedRef("max", i64Fn2), num(3), num(7)),
	}

	v, _ := run(t, p)
	if v.I64() != 7 {
		t.Fatalf("expected 7, got %d", v.I64())
	}
}

func TestRecursionThroughTheTable(t *testing.T) {
	// sum(n) = if n > 0 then n + sum(n - 1) else 0
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("sum", typesystem.I64,
				&ast.If{
					Cond: &ast.Binary{Op: ">", Left: ref("n"), Right: num(0), Typ: typesystem.Bool},
					Then: binop("+", ref("n"),
						call(typesystem.I64, typedRef("sum", i64Fn1), binop("-", ref("n"), num(1)))),
					Else: num(0),
				},
				param("n")),
		},
		Main: call(typesystem.I64, typedRef("sum", i64Fn1), num(100)),
	}

	v, _ := run(t, p)
	if v.I64() != 5050 {
		t.Fatalf("expected 5050, got %d", v.I64())
	}
}

func TestRunawayRecursionIsBounded(t *testing.T) {
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			decl("loop", typesystem.I64,
				call(typesystem.I64, typedRef("loop", i64Fn1), ref("n")),
				param("n")),
		},
		Main: call(typesystem.I64, typedRef("loop", i64Fn1), num(1)),
	}

	vm := NewMachine(lower(t, p), Options{})
	_, err := vm.Run()
	if err == nil || !strings.Contains(err.Error(), "call depth") {
		t.Fatalf("expected call depth error, got %v", err)
	}
}

func TestDivisionByZeroFails(t *testing.T) {
	p := &ast.Program{
		Main: binop("/", num(1), num(0)),
	}

	vm := NewMachine(lower(t, p), Options{})
	_, err := vm.Run()
	if err == nil {
		t.Fatalf("expected division by zero error")
	}
}

func TestApplyingScalarValueFails(t *testing.T) {
	// A record address is required by populate; hand-built module applying a
	// plain integer must fail cleanly rather than corrupt memory.
	mod := &ir.Module{
		Main: &ir.Populate{
			Target: ir.ConstI64(9),
			Arg:    ir.ConstI64(1),
		},
	}

	vm := NewMachine(mod, Options{})
	_, err := vm.Run()
	if err == nil || !strings.Contains(err.Error(), "not a function") {
		t.Fatalf("expected non-function application error, got %v", err)
	}
}
