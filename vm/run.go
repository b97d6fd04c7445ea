package vm

import (
	"fmt"

	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/opcode"
	"github.com/kaisadilla/judith/runtime"
)

// run executes fn's chunk from offset 0 until a RET, using this
// Interpreter's shared operand stack and fn's private locals slice: a single
// switch over a byte read from an incrementing instruction pointer, one case
// per opcode.
func (it *Interpreter) run(fn *runtime.JasmFunction) error {
	code := fn.Chunk.Code
	var ip uint32

	for {
		if it.Ctx != nil {
			if err := it.Ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrCancelled, err)
			}
		}
		it.steps++
		if it.MaxSteps != 0 && it.steps > it.MaxSteps {
			return ErrStepLimit
		}

		if int(ip) >= len(code) {
			return fmt.Errorf("%w: offset %d", ErrTruncatedCode, ip)
		}
		op := opcode.Opcode(code[ip])
		ip++

		switch op {
		case opcode.NOOP:

		case opcode.RET:
			return nil

		case opcode.CONST:
			b, err := readU8(code, &ip)
			if err != nil {
				return err
			}
			if err := it.push(runtime.ValueInt64(int64(int8(b)))); err != nil {
				return err
			}

		case opcode.CONST_L:
			u, err := readU32(code, &ip)
			if err != nil {
				return err
			}
			if err := it.push(runtime.ValueInt64(int64(int32(u)))); err != nil {
				return err
			}

		case opcode.CONST_L_L:
			u, err := readU64(code, &ip)
			if err != nil {
				return err
			}
			if err := it.push(runtime.ValueInt64(int64(u))); err != nil {
				return err
			}

		case opcode.CONST_0:
			if err := it.push(runtime.ValueInt64(0)); err != nil {
				return err
			}

		case opcode.F_CONST_1:
			if err := it.push(runtime.ValueFloat64(1)); err != nil {
				return err
			}
		case opcode.F_CONST_2:
			if err := it.push(runtime.ValueFloat64(2)); err != nil {
				return err
			}
		case opcode.I_CONST_1:
			if err := it.push(runtime.ValueInt64(1)); err != nil {
				return err
			}
		case opcode.I_CONST_2:
			if err := it.push(runtime.ValueInt64(2)); err != nil {
				return err
			}

		case opcode.STR_CONST:
			idx, err := readU8(code, &ip)
			if err != nil {
				return err
			}
			if err := it.pushString(fn, uint32(idx)); err != nil {
				return err
			}

		case opcode.STR_CONST_L:
			idx, err := readU32(code, &ip)
			if err != nil {
				return err
			}
			if err := it.pushString(fn, idx); err != nil {
				return err
			}

		case opcode.F_NEG:
			a, err := it.pop()
			if err != nil {
				return err
			}
			if err := it.push(runtime.ValueFloat64(-a.Float64())); err != nil {
				return err
			}

		case opcode.F_ADD, opcode.F_SUB, opcode.F_MUL, opcode.F_DIV:
			if err := it.binaryFloat(op); err != nil {
				return err
			}

		case opcode.F_GT, opcode.F_GE, opcode.F_LT, opcode.F_LE:
			if err := it.compareFloat(op); err != nil {
				return err
			}

		case opcode.I_NEG:
			a, err := it.pop()
			if err != nil {
				return err
			}
			if err := it.push(runtime.ValueInt64(-a.Int64())); err != nil {
				return err
			}

		case opcode.I_ADD, opcode.I_ADD_CHECKED, opcode.I_SUB, opcode.I_SUB_CHECKED,
			opcode.I_MUL, opcode.I_MUL_CHECKED, opcode.I_DIV, opcode.I_DIV_CHECKED:
			if err := it.binaryInt(op); err != nil {
				return err
			}

		case opcode.I_GT, opcode.I_GE, opcode.I_LT, opcode.I_LE:
			if err := it.compareInt(op); err != nil {
				return err
			}

		case opcode.EQ, opcode.NEQ:
			b, err := it.pop()
			if err != nil {
				return err
			}
			a, err := it.pop()
			if err != nil {
				return err
			}
			eq := runtime.Equal(a, b)
			if op == opcode.NEQ {
				eq = !eq
			}
			if err := it.push(runtime.ValueBool(eq)); err != nil {
				return err
			}

		case opcode.STORE_0, opcode.STORE_1, opcode.STORE_2, opcode.STORE_3, opcode.STORE_4:
			if err := it.storeLocal(uint32(op - opcode.STORE_0)); err != nil {
				return err
			}
		case opcode.STORE:
			idx, err := readU8(code, &ip)
			if err != nil {
				return err
			}
			if err := it.storeLocal(uint32(idx)); err != nil {
				return err
			}
		case opcode.STORE_L:
			idx, err := readU16(code, &ip)
			if err != nil {
				return err
			}
			if err := it.storeLocal(uint32(idx)); err != nil {
				return err
			}

		case opcode.LOAD_0, opcode.LOAD_1, opcode.LOAD_2, opcode.LOAD_3, opcode.LOAD_4:
			if err := it.loadLocal(uint32(op - opcode.LOAD_0)); err != nil {
				return err
			}
		case opcode.LOAD:
			idx, err := readU8(code, &ip)
			if err != nil {
				return err
			}
			if err := it.loadLocal(uint32(idx)); err != nil {
				return err
			}
		case opcode.LOAD_L:
			idx, err := readU16(code, &ip)
			if err != nil {
				return err
			}
			if err := it.loadLocal(uint32(idx)); err != nil {
				return err
			}

		case opcode.POP:
			if _, err := it.pop(); err != nil {
				return err
			}

		case opcode.JMP:
			off, err := readI8(code, &ip)
			if err != nil {
				return err
			}
			ip = jump(ip, int32(off))
		case opcode.JMP_L:
			off, err := readI32(code, &ip)
			if err != nil {
				return err
			}
			ip = jump(ip, off)

		case opcode.JTRUE, opcode.JTRUE_L, opcode.JFALSE, opcode.JFALSE_L:
			wide := op == opcode.JTRUE_L || op == opcode.JFALSE_L
			wantTrue := op == opcode.JTRUE || op == opcode.JTRUE_L
			off, err := readOffset(code, &ip, wide)
			if err != nil {
				return err
			}
			v, err := it.pop()
			if err != nil {
				return err
			}
			if v.Bool() == wantTrue {
				ip = jump(ip, off)
			}

		case opcode.JTRUE_K, opcode.JTRUE_K_L, opcode.JFALSE_K, opcode.JFALSE_K_L:
			wide := op == opcode.JTRUE_K_L || op == opcode.JFALSE_K_L
			wantTrue := op == opcode.JTRUE_K || op == opcode.JTRUE_K_L
			off, err := readOffset(code, &ip, wide)
			if err != nil {
				return err
			}
			v, err := it.peek()
			if err != nil {
				return err
			}
			if v.Bool() == wantTrue {
				ip = jump(ip, off)
			} else if _, err := it.pop(); err != nil {
				return err
			}

		case opcode.CALL:
			idx, err := readU32(code, &ip)
			if err != nil {
				return err
			}
			if err := it.dispatchCall(fn, idx); err != nil {
				return err
			}

		case opcode.NATIVE:
			return fmt.Errorf("%w: NATIVE is a reserved opcode and cannot appear in compiled code", ErrUnknownOpcode)

		case opcode.PRINT:
			tag, err := readU8(code, &ip)
			if err != nil {
				return err
			}
			v, err := it.pop()
			if err != nil {
				return err
			}
			if err := it.printValue(opcode.ConstantType(tag), v); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: %d at offset %d", ErrUnknownOpcode, op, ip-1)
		}
	}
}

func (it *Interpreter) dispatchCall(caller *runtime.JasmFunction, idx uint32) error {
	ref, ok := caller.FunctionRefs().At(idx)
	if !ok {
		return fmt.Errorf("%w: %d", ErrBadCallIndex, idx)
	}
	switch ref.Kind {
	case runtime.RefInternal:
		return it.call(ref.Internal)
	case runtime.RefNative:
		return it.invokeNative(ref.Native)
	default:
		// RefExternal never reaches here: loader.Link fails eagerly on an
		// unresolved external reference, so a successfully linked assembly's
		// FuncRefs table contains only Internal and Native entries.
		return fmt.Errorf("%w: function ref %d", ErrUnresolvedCall, idx)
	}
}

func (it *Interpreter) pushString(fn *runtime.JasmFunction, idx uint32) error {
	so, ok := fn.Chunk.StringAt(idx)
	if !ok {
		return fmt.Errorf("%w: %d", ErrBadStringIndex, idx)
	}
	return it.push(runtime.ValueObject(so))
}

func (it *Interpreter) storeLocal(idx uint32) error {
	if int(idx) >= len(it.locals) {
		return fmt.Errorf("%w: %d (have %d locals)", ErrBadLocalIndex, idx, len(it.locals))
	}
	v, err := it.pop()
	if err != nil {
		return err
	}
	it.locals[idx] = v
	return nil
}

func (it *Interpreter) loadLocal(idx uint32) error {
	if int(idx) >= len(it.locals) {
		return fmt.Errorf("%w: %d (have %d locals)", ErrBadLocalIndex, idx, len(it.locals))
	}
	return it.push(it.locals[idx])
}

func (it *Interpreter) binaryFloat(op opcode.Opcode) error {
	b, err := it.pop()
	if err != nil {
		return err
	}
	a, err := it.pop()
	if err != nil {
		return err
	}
	var r float64
	switch op {
	case opcode.F_ADD:
		r = a.Float64() + b.Float64()
	case opcode.F_SUB:
		r = a.Float64() - b.Float64()
	case opcode.F_MUL:
		r = a.Float64() * b.Float64()
	case opcode.F_DIV:
		r = a.Float64() / b.Float64() // IEEE-754 +/-Inf or NaN on division by zero, no fault
	}
	return it.push(runtime.ValueFloat64(r))
}

func (it *Interpreter) compareFloat(op opcode.Opcode) error {
	b, err := it.pop()
	if err != nil {
		return err
	}
	a, err := it.pop()
	if err != nil {
		return err
	}
	var r bool
	switch op {
	case opcode.F_GT:
		r = a.Float64() > b.Float64()
	case opcode.F_GE:
		r = a.Float64() >= b.Float64()
	case opcode.F_LT:
		r = a.Float64() < b.Float64()
	case opcode.F_LE:
		r = a.Float64() <= b.Float64()
	}
	return it.push(runtime.ValueBool(r))
}

func (it *Interpreter) compareInt(op opcode.Opcode) error {
	b, err := it.pop()
	if err != nil {
		return err
	}
	a, err := it.pop()
	if err != nil {
		return err
	}
	var r bool
	switch op {
	case opcode.I_GT:
		r = a.Int64() > b.Int64()
	case opcode.I_GE:
		r = a.Int64() >= b.Int64()
	case opcode.I_LT:
		r = a.Int64() < b.Int64()
	case opcode.I_LE:
		r = a.Int64() <= b.Int64()
	}
	return it.push(runtime.ValueBool(r))
}

// printValue formats v per the ConstantType tag PRINT carries as its
// operand, so the interpreter never has to guess a numeric cell's intended
// type from its bits alone.
func (it *Interpreter) printValue(tag opcode.ConstantType, v runtime.Value) error {
	var err error
	switch tag {
	case opcode.StringUTF8:
		so, ok := v.Object().(*intern.StringObject)
		if !ok {
			return fmt.Errorf("%w: print tag StringUTF8 on a non-string value", ErrNativeTypeMismatch)
		}
		_, err = fmt.Fprintln(it.Stdout, so.String())
	case opcode.Float64:
		_, err = fmt.Fprintln(it.Stdout, v.Float64())
	case opcode.UnsignedInt64:
		_, err = fmt.Fprintln(it.Stdout, v.Uint64())
	case opcode.Bool:
		_, err = fmt.Fprintln(it.Stdout, v.Bool())
	case opcode.Int64:
		_, err = fmt.Fprintln(it.Stdout, v.Int64())
	default: // unknown tag: write a diagnostic line instead of the value
		_, err = fmt.Fprintf(it.Stdout, "<unknown constant type %d>\n", tag)
	}
	return err
}

func jump(ip uint32, off int32) uint32 {
	return uint32(int64(ip) + int64(off))
}
