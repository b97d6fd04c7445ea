// Package vm implements the JUDITH interpreter: the opcode-dispatch loop
// that walks a JasmFunction's Chunk, the single operand stack shared across
// every nested call, and the native functions (print/println/readln/error)
// bytecode reaches through NATIVE refs.
//
// The operand stack is fixed-size and shared by the whole Interpreter;
// calling a function only swaps which locals array is active, never
// allocates a new operand stack. CALL is a recursive Go call sharing the
// same Interpreter.stack/sp across every frame, so a call's arithmetic and
// its caller's arithmetic operate on one contiguous stack exactly as a
// single shared array would.
package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/native"
	"github.com/kaisadilla/judith/runtime"
)

// stackMax is the fixed capacity of the shared operand stack, mirroring the
// original's STACK_MAX constant (VM.hpp).
const stackMax = 1024

// maxCallDepth bounds Go recursion depth for CALL, standing in for the
// original's fixed localArrayStack capacity: a JUDITH program that recurses
// this deeply would have overflowed that fixed array too.
const maxCallDepth = 512

// Interpreter executes one call into a loaded assembly. It is not safe for
// concurrent use; callers needing concurrent execution construct one
// Interpreter per goroutine, each against its own intern.Table-consistent
// VM, as the original's single-threaded VM class assumes.
type Interpreter struct {
	// Strings is the intern table new strings (Readln's result) are interned
	// into. It must be the same table the executing assembly was linked
	// against, or identity comparisons against its literals will fail.
	Strings *intern.Table

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of instructions executed before the run
	// aborts with ErrStepLimit. Zero means unbounded. There is no such limit
	// in the original; it is supplemented here (SPEC_FULL.md's concurrency
	// and resource model) as the only practical way to bound a pathological
	// or malicious program's CPU use from Go, which has no VM-level
	// instruction budget of its own.
	MaxSteps uint64

	// Ctx, if non-nil, is checked between each instruction; a cancelled
	// context aborts the run with ErrCancelled. Supplemented the same way as
	// MaxSteps: the original has no concurrency to cancel.
	Ctx context.Context

	stack [stackMax]runtime.Value
	sp    int

	locals    []runtime.Value
	callDepth int

	steps uint64

	stdinReader *bufio.Reader
}

// New returns an Interpreter ready to execute against strings, the intern
// table its target assembly was linked with.
func New(strings *intern.Table) *Interpreter {
	return &Interpreter{
		Strings: strings,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
	}
}

func (it *Interpreter) push(v runtime.Value) error {
	if it.sp >= stackMax {
		return ErrStackOverflow
	}
	it.stack[it.sp] = v
	it.sp++
	return nil
}

func (it *Interpreter) pop() (runtime.Value, error) {
	if it.sp <= 0 {
		return runtime.Value{}, ErrStackUnderflow
	}
	it.sp--
	return it.stack[it.sp], nil
}

func (it *Interpreter) peek() (runtime.Value, error) {
	if it.sp <= 0 {
		return runtime.Value{}, ErrStackUnderflow
	}
	return it.stack[it.sp-1], nil
}

// call invokes fn with no arguments pre-bound and runs it to completion. The
// callee gets a fresh, zeroed locals array of fn.MaxLocals slots; anything
// the caller pushed stays on the operand stack for the callee's own bytecode
// to consume. It is the entry point CALL uses for RefInternal targets, so
// every nested call shares this Interpreter's single operand stack.
func (it *Interpreter) call(fn *runtime.JasmFunction) error {
	it.callDepth++
	if it.callDepth > maxCallDepth {
		it.callDepth--
		return ErrCallDepthExceeded
	}
	defer func() { it.callDepth-- }()

	savedLocals := it.locals
	it.locals = make([]runtime.Value, fn.MaxLocals)
	defer func() { it.locals = savedLocals }()

	return it.run(fn)
}

// Run loads entryFn's locals from args (args[i] becomes local slot i, the
// convention a parameterless main entry point trivially satisfies with a nil
// or empty args) and executes it to completion.
func (it *Interpreter) Run(entryFn *runtime.JasmFunction, args []runtime.Value) error {
	it.callDepth++
	defer func() { it.callDepth-- }()

	it.locals = make([]runtime.Value, entryFn.MaxLocals)
	copy(it.locals, args)

	return it.run(entryFn)
}

func (it *Interpreter) stdin() *bufio.Reader {
	if it.stdinReader == nil {
		it.stdinReader = bufio.NewReader(it.Stdin)
	}
	return it.stdinReader
}

func (it *Interpreter) invokeNative(fn native.Function) error {
	switch fn.Tag {
	case native.Print, native.Println:
		v, err := it.pop()
		if err != nil {
			return err
		}
		so, ok := v.Object().(*intern.StringObject)
		if !ok {
			return fmt.Errorf("%w: %s expects a string argument", ErrNativeTypeMismatch, fn.Name.String())
		}
		if fn.Tag == native.Println {
			_, err = fmt.Fprintln(it.Stdout, so.String())
		} else {
			_, err = fmt.Fprint(it.Stdout, so.String())
		}
		return err

	case native.Readln:
		line, err := it.stdin().ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("readln: %w", err)
		}
		line = trimNewline(line)
		return it.push(runtime.ValueObject(it.Strings.Intern(line)))

	case native.Error:
		v, err := it.pop()
		if err != nil {
			return err
		}
		if so, ok := v.Object().(*intern.StringObject); ok {
			return fmt.Errorf("script error: %s", so.String())
		}
		return fmt.Errorf("script error: value %d", v.Int64())

	default:
		return fmt.Errorf("%w: native function tag %d", ErrUnresolvedCall, fn.Tag)
	}
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}
