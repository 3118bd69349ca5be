package runtime

import (
	"fmt"

	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/typesystem"
)

func (vm *Machine) evalBinary(ex *ir.Binary, frame []Value) (Value, error) {
	left, err := vm.eval(ex.Left, frame)
	if err != nil {
		return Value{}, err
	}
	right, err := vm.eval(ex.Right, frame)
	if err != nil {
		return Value{}, err
	}

	switch ex.Typ {
	case typesystem.I64:
		return vm.evalI64(ex.Op, left, right)
	case typesystem.F64:
		return vm.evalF64(ex.Op, left, right)
	case typesystem.Bool:
		return vm.evalBool(ex.Op, left, right)
	}
	return Value{}, fmt.Errorf("binary op %q on unsupported type %s", ex.Op, ex.Typ)
}

func (vm *Machine) evalI64(op string, l, r Value) (Value, error) {
	a, b := l.I64(), r.I64()
	switch op {
	case "+":
		return I64Value(a + b), nil
	case "-":
		return I64Value(a - b), nil
	case "*":
		return I64Value(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, fmt.Errorf("integer division by zero")
		}
		return I64Value(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, fmt.Errorf("integer modulo by zero")
		}
		return I64Value(a % b), nil
	case "==":
		return BoolValue(a == b), nil
	case "!=":
		return BoolValue(a != b), nil
	case "<":
		return BoolValue(a < b), nil
	case "<=":
		return BoolValue(a <= b), nil
	case ">":
		return BoolValue(a > b), nil
	case ">=":
		return BoolValue(a >= b), nil
	}
	return Value{}, fmt.Errorf("unknown integer op %q", op)
}

func (vm *Machine) evalF64(op string, l, r Value) (Value, error) {
	a, b := l.F64(), r.F64()
	switch op {
	case "+":
		return F64Value(a + b), nil
	case "-":
		return F64Value(a - b), nil
	case "*":
		return F64Value(a * b), nil
	case "/":
		return F64Value(a / b), nil
	case "==":
		return BoolValue(a == b), nil
	case "!=":
		return BoolValue(a != b), nil
	case "<":
		return BoolValue(a < b), nil
	case "<=":
		return BoolValue(a <= b), nil
	case ">":
		return BoolValue(a > b), nil
	case ">=":
		return BoolValue(a >= b), nil
	}
	return Value{}, fmt.Errorf("unknown float op %q", op)
}

func (vm *Machine) evalBool(op string, l, r Value) (Value, error) {
	a, b := l.Bool(), r.Bool()
	switch op {
	case "&&":
		return BoolValue(a && b), nil
	case "||":
		return BoolValue(a || b), nil
	case "==":
		return BoolValue(a == b), nil
	case "!=":
		return BoolValue(a != b), nil
	}
	return Value{}, fmt.Errorf("unknown boolean op %q", op)
}
