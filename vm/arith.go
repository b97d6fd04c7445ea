package vm

import (
	"math"

	"github.com/kaisadilla/judith/opcode"
	"github.com/kaisadilla/judith/runtime"
)

// binaryInt implements I_ADD/I_SUB/I_MUL/I_DIV and their _CHECKED siblings.
// The unchecked forms wrap silently on overflow, matching plain Go int64
// arithmetic; the checked forms fail fast instead.
//
// Division by zero is a fatal runtime error for both I_DIV and I_DIV_CHECKED:
// unlike float division, integer division by zero has no well-defined
// result to produce, and Go's own integer division panics on it, so letting
// it through here would crash the host process instead of the running
// program.
func (it *Interpreter) binaryInt(op opcode.Opcode) error {
	b, err := it.pop()
	if err != nil {
		return err
	}
	a, err := it.pop()
	if err != nil {
		return err
	}
	x, y := a.Int64(), b.Int64()

	var r int64
	switch op {
	case opcode.I_ADD:
		r = x + y
	case opcode.I_ADD_CHECKED:
		if addOverflows(x, y) {
			return ErrIntegerOverflow
		}
		r = x + y
	case opcode.I_SUB:
		r = x - y
	case opcode.I_SUB_CHECKED:
		if subOverflows(x, y) {
			return ErrIntegerOverflow
		}
		r = x - y
	case opcode.I_MUL:
		r = x * y
	case opcode.I_MUL_CHECKED:
		if mulOverflows(x, y) {
			return ErrIntegerOverflow
		}
		r = x * y
	case opcode.I_DIV, opcode.I_DIV_CHECKED:
		if y == 0 {
			return ErrDivisionByZero
		}
		if op == opcode.I_DIV_CHECKED && x == math.MinInt64 && y == -1 {
			return ErrIntegerOverflow
		}
		r = x / y
	}
	return it.push(runtime.ValueInt64(r))
}

func addOverflows(a, b int64) bool {
	sum := a + b
	return ((a ^ sum) & (b ^ sum)) < 0
}

func subOverflows(a, b int64) bool {
	diff := a - b
	return ((a ^ b) & (a ^ diff)) < 0
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	if (a == -1 && b == math.MinInt64) || (a == math.MinInt64 && b == -1) {
		return true
	}
	r := a * b
	return r/b != a
}
