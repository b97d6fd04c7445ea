package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/native"
	"github.com/kaisadilla/judith/opcode"
	"github.com/kaisadilla/judith/runtime"
	"github.com/kaisadilla/judith/vm"
)

func nativePrintFunc(strings *intern.Table) native.Function {
	return native.NewAssembly(strings).Functions[native.Print]
}

// buildAssembly wires one block named "main" holding funcs, sharing
// blockStrs as its string table and refs as the assembly's function
// reference table, then runs Bind so every back-pointer the interpreter
// relies on (Chunk.StringAt, JasmFunction.FunctionRefs) is installed.
func buildAssembly(strings *intern.Table, blockStrs []string, funcs []*runtime.JasmFunction, refs []runtime.FuncRef) *runtime.Assembly {
	blk := &runtime.Block{
		Name:      strings.Intern("main"),
		Strings:   strings.InternAll(blockStrs),
		Functions: funcs,
	}
	asm := &runtime.Assembly{
		StemName: "test",
		Blocks:   []*runtime.Block{blk},
		FuncRefs: runtime.FunctionCollection{Refs: refs},
	}
	asm.Bind()
	return asm
}

func newInterpreter(strings *intern.Table, out *bytes.Buffer) *vm.Interpreter {
	it := vm.New(strings)
	it.Stdout = out
	return it
}

func TestHelloWorld(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.STR_CONST), 0,
		byte(opcode.PRINT), byte(opcode.StringUTF8),
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, []string{"hello"}, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	require.NoError(t, it.Run(asm.Blocks[0].Functions[0], nil))
	assert.Equal(t, "hello\n", out.String())
}

func TestArithmetic(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.I_CONST_1),
		byte(opcode.I_CONST_2),
		byte(opcode.I_ADD),
		byte(opcode.PRINT), byte(opcode.Int64),
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	require.NoError(t, it.Run(asm.Blocks[0].Functions[0], nil))
	assert.Equal(t, "3\n", out.String())
}

func TestCheckedIntegerOverflow(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.CONST_L_L),
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, // math.MinInt64
		byte(opcode.I_CONST_1),
		byte(opcode.I_NEG),
		byte(opcode.I_ADD_CHECKED),
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	err := it.Run(asm.Blocks[0].Functions[0], nil)
	assert.ErrorIs(t, err, vm.ErrIntegerOverflow)
}

func TestBranching(t *testing.T) {
	strings := intern.New()

	// if (1) print "yes" else print "no"
	code := []byte{
		byte(opcode.I_CONST_1), // 0
		byte(opcode.JFALSE), 6, // 1,2: jump to else at 9 (ip 3 + 6)
		byte(opcode.STR_CONST), 0, // 3,4: "yes"
		byte(opcode.PRINT), byte(opcode.StringUTF8), // 5,6
		byte(opcode.JMP), 4, // 7,8: jump to RET
		byte(opcode.STR_CONST), 1, // 9,10: "no"
		byte(opcode.PRINT), byte(opcode.StringUTF8), // 11,12
		byte(opcode.RET), // 13
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, []string{"yes", "no"}, []*runtime.JasmFunction{fn}, nil)

	var out bytes.Buffer
	it := newInterpreter(strings, &out)
	require.NoError(t, it.Run(asm.Blocks[0].Functions[0], nil))
	assert.Equal(t, "yes\n", out.String())
}

func TestInterningIdentity(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.STR_CONST), 0,
		byte(opcode.STR_CONST), 0,
		byte(opcode.EQ),
		byte(opcode.PRINT), byte(opcode.Bool),
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, []string{"same"}, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	require.NoError(t, it.Run(asm.Blocks[0].Functions[0], nil))
	assert.Equal(t, "true\n", out.String())
}

func TestCallAndLocalIsolation(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	// callee: local0 = 2; print local0
	callee := &runtime.JasmFunction{
		MaxLocals: 1,
		MaxStack:  4,
		Chunk: runtime.Chunk{Code: []byte{
			byte(opcode.I_CONST_2),
			byte(opcode.STORE_0),
			byte(opcode.LOAD_0),
			byte(opcode.PRINT), byte(opcode.Int64),
			byte(opcode.RET),
		}},
	}
	// caller: local0 = 1; call callee; print local0 (must still be 1)
	caller := &runtime.JasmFunction{
		MaxLocals: 1,
		MaxStack:  4,
		Chunk: runtime.Chunk{Code: []byte{
			byte(opcode.I_CONST_1),
			byte(opcode.STORE_0),
			byte(opcode.CALL), 0, 0, 0, 0,
			byte(opcode.LOAD_0),
			byte(opcode.PRINT), byte(opcode.Int64),
			byte(opcode.RET),
		}},
	}

	refs := []runtime.FuncRef{{Kind: runtime.RefInternal, Internal: callee}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{caller, callee}, refs)

	it := newInterpreter(strings, &out)
	require.NoError(t, it.Run(asm.Blocks[0].Functions[0], nil))
	assert.Equal(t, "2\n1\n", out.String())
}

func TestStackUnderflow(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{byte(opcode.POP), byte(opcode.RET)}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	err := it.Run(asm.Blocks[0].Functions[0], nil)
	assert.ErrorIs(t, err, vm.ErrStackUnderflow)
}

func TestDivisionByZero(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.I_CONST_1),
		byte(opcode.CONST_0),
		byte(opcode.I_DIV),
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{fn}, nil)

	it := newInterpreter(strings, &out)
	err := it.Run(asm.Blocks[0].Functions[0], nil)
	assert.ErrorIs(t, err, vm.ErrDivisionByZero)
}

func TestNativePrintRequiresString(t *testing.T) {
	strings := intern.New()
	var out bytes.Buffer

	code := []byte{
		byte(opcode.I_CONST_1),
		byte(opcode.CALL), 0, 0, 0, 0,
		byte(opcode.RET),
	}
	fn := &runtime.JasmFunction{MaxStack: 4, Chunk: runtime.Chunk{Code: code}}
	refs := []runtime.FuncRef{{Kind: runtime.RefNative, Native: nativePrintFunc(strings)}}
	asm := buildAssembly(strings, nil, []*runtime.JasmFunction{fn}, refs)

	it := newInterpreter(strings, &out)
	err := it.Run(asm.Blocks[0].Functions[0], nil)
	assert.ErrorIs(t, err, vm.ErrNativeTypeMismatch)
}
