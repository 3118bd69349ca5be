package runtime

import (
	"fmt"
	"math"

	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/typesystem"
)

// Kind tags a runtime value.
type Kind int

const (
	KindI64 Kind = iota
	KindF64
	KindBool
	KindClosure // Bits holds a closure record address
)

// Value is one scalar-typed stack value: raw bits plus a tag.
type Value struct {
	Kind Kind
	Bits uint64
}

func I64Value(v int64) Value    { return Value{Kind: KindI64, Bits: uint64(v)} }
func F64Value(v float64) Value  { return Value{Kind: KindF64, Bits: math.Float64bits(v)} }
func BoolValue(v bool) Value {
	if v {
		return Value{Kind: KindBool, Bits: 1}
	}
	return Value{Kind: KindBool}
}

func (v Value) I64() int64     { return int64(v.Bits) }
func (v Value) F64() float64   { return math.Float64frombits(v.Bits) }
func (v Value) Bool() bool     { return v.Bits != 0 }
func (v Value) Addr() uint32   { return uint32(v.Bits) }

func kindOf(t typesystem.Type) Kind {
	switch tt := t.(type) {
	case typesystem.Scalar:
		switch tt {
		case typesystem.F64:
			return KindF64
		case typesystem.Bool:
			return KindBool
		}
		return KindI64
	case typesystem.Function:
		return KindClosure
	}
	return KindI64
}

const maxCallDepth = 8192

// Machine executes a lowered module against a linear memory. Execution is
// single-threaded; a record is only ever mutated by the populate path.
type Machine struct {
	mod *ir.Module
	mem *Memory

	// debugChecks enables the structural guards that should be unreachable
	// on well-formed modules (record slot bounds, frame sizes).
	debugChecks bool

	depth int
}

// Options configures a Machine.
type Options struct {
	MemorySize  int
	DebugChecks bool
}

func NewMachine(mod *ir.Module, opts Options) *Machine {
	return &Machine{
		mod:         mod,
		mem:         NewMemory(opts.MemorySize),
		debugChecks: opts.DebugChecks,
	}
}

// Memory exposes the machine's linear memory, mainly for tests inspecting
// record state.
func (vm *Machine) Memory() *Memory {
	return vm.mem
}

// Run evaluates the module's entry expression.
func (vm *Machine) Run() (Value, error) {
	if vm.mod.Main == nil {
		return Value{}, fmt.Errorf("module has no entry expression")
	}
	frame := make([]Value, vm.mod.MainFrameSize)
	return vm.eval(vm.mod.Main, frame)
}

// CallFunction invokes a table entry directly with already-evaluated
// arguments. This is the host-side equivalent of a saturated direct call.
func (vm *Machine) CallFunction(index int, args []Value) (Value, error) {
	return vm.invoke(index, args)
}

func (vm *Machine) invoke(index int, args []Value) (Value, error) {
	if index < 0 || index >= len(vm.mod.Funcs) {
		return Value{}, fmt.Errorf("indirect call outside table: index %d of %d", index, len(vm.mod.Funcs))
	}
	def := vm.mod.Funcs[index]
	if len(args) != def.Arity() {
		return Value{}, fmt.Errorf("arity mismatch: %s expects %d argument(s), got %d", def.Name, def.Arity(), len(args))
	}

	vm.depth++
	if vm.depth > maxCallDepth {
		return Value{}, fmt.Errorf("call depth exceeded in %s", def.Name)
	}
	defer func() { vm.depth-- }()

	frame := make([]Value, def.FrameSize)
	copy(frame, args)
	return vm.eval(def.Code, frame)
}

func (vm *Machine) eval(e ir.Expr, frame []Value) (Value, error) {
	switch ex := e.(type) {
	case *ir.Const:
		return Value{Kind: kindOf(ex.Typ), Bits: ex.Bits}, nil

	case *ir.Local:
		return frame[ex.Slot], nil

	case *ir.Bind:
		v, err := vm.eval(ex.Value, frame)
		if err != nil {
			return Value{}, err
		}
		frame[ex.Slot] = v
		return vm.eval(ex.In, frame)

	case *ir.Binary:
		return vm.evalBinary(ex, frame)

	case *ir.If:
		cond, err := vm.eval(ex.Cond, frame)
		if err != nil {
			return Value{}, err
		}
		if cond.Bool() {
			return vm.eval(ex.Then, frame)
		}
		return vm.eval(ex.Else, frame)

	case *ir.Call:
		args, err := vm.evalArgs(ex.Args, frame)
		if err != nil {
			return Value{}, err
		}
		return vm.invoke(ex.Index, args)

	case *ir.AllocClosure:
		return vm.allocClosure(ex, frame)

	case *ir.Populate:
		return vm.populate(ex, frame)
	}
	return Value{}, fmt.Errorf("unknown instruction %T", e)
}

func (vm *Machine) evalArgs(exprs []ir.Expr, frame []Value) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, a := range exprs {
		v, err := vm.eval(a, frame)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// allocClosure builds a closure record: header first, then the known
// arguments reverse-filled in parameter order. The address escapes only
// after the record is fully initialized.
func (vm *Machine) allocClosure(ex *ir.AllocClosure, frame []Value) (Value, error) {
	if ex.Index < 0 || ex.Index >= len(vm.mod.Funcs) {
		return Value{}, fmt.Errorf("closure for unknown table index %d", ex.Index)
	}
	def := vm.mod.Funcs[ex.Index]

	args, err := vm.evalArgs(ex.Args, frame)
	if err != nil {
		return Value{}, err
	}

	addr := vm.mem.AllocRecord(ex.Index, def.Arity())
	for _, v := range args {
		cell := vm.mem.AllocCell(v.Bits)
		if _, err := vm.mem.PopulateClosure(addr, cell); err != nil {
			return Value{}, err
		}
	}
	return Value{Kind: KindClosure, Bits: uint64(addr)}, nil
}

// populate implements the populate-then-maybe-invoke contract: store one
// argument address, and the moment remaining arity reaches zero perform the
// final indirect call.
func (vm *Machine) populate(ex *ir.Populate, frame []Value) (Value, error) {
	target, err := vm.eval(ex.Target, frame)
	if err != nil {
		return Value{}, err
	}
	if target.Kind != KindClosure {
		return Value{}, fmt.Errorf("cannot apply argument: value is not a function")
	}
	addr := target.Addr()

	if ex.Arg == nil {
		// Zero-argument application: dispatch if saturated, otherwise the
		// call stays deferred and the record's address is the result.
		if vm.mem.RecordRemaining(addr) == 0 {
			return vm.dispatch(addr)
		}
		return target, nil
	}

	arg, err := vm.eval(ex.Arg, frame)
	if err != nil {
		return Value{}, err
	}

	if vm.debugChecks {
		def := vm.mod.Funcs[vm.mem.RecordIndex(addr)]
		if rem := vm.mem.RecordRemaining(addr); rem > def.Arity() {
			panic(fmt.Sprintf("[M001] record %d remaining %d exceeds arity %d", addr, rem, def.Arity()))
		}
	}

	cell := vm.mem.AllocCell(arg.Bits)
	remaining, err := vm.mem.PopulateClosure(addr, cell)
	if err != nil {
		return Value{}, err
	}
	if remaining == 0 {
		return vm.dispatch(addr)
	}
	return Value{Kind: KindClosure, Bits: uint64(addr)}, nil
}

// dispatch performs the final call on a saturated record: load each stored
// cell address, load the value behind it, push the values in the callee's
// parameter order, and call through the table.
func (vm *Machine) dispatch(addr uint32) (Value, error) {
	index := vm.mem.RecordIndex(addr)
	if index < 0 || index >= len(vm.mod.Funcs) {
		return Value{}, fmt.Errorf("record %d names unknown table index %d", addr, index)
	}
	def := vm.mod.Funcs[index]

	args := make([]Value, def.Arity())
	for j, argAddr := range vm.mem.ArgAddresses(addr, def.Arity()) {
		args[j] = Value{Kind: kindOf(def.Params[j].Typ), Bits: vm.mem.ReadU64(argAddr)}
	}
	return vm.invoke(index, args)
}
