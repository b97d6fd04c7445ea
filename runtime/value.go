// Package runtime holds the linked, in-memory form of a loaded JUDITH
// assembly: Assembly, Block, JasmFunction, Chunk, FunctionCollection, and
// the Value cell the interpreter pushes and pops. JUDITH's Value is a
// single, untagged 64-bit-or-wider cell, not a tagged union of many Go
// types the way a richer Value interface hierarchy would model it.
package runtime

import (
	"math"

	"github.com/kaisadilla/judith/object"
)

// Value is a single stack/local slot. It is untagged: the opcode that
// produces a Value and the opcode that consumes it must agree on how to
// interpret it. The interpreter never inspects bits to decide what kind of
// data it holds.
//
// The C++ original represents this as a union of an i64, a f64, a bool, and a
// raw object pointer. Go cannot safely union a scalar with a GC-tracked
// pointer the same way (storing a pointer's bits in a uint64 would hide it
// from the garbage collector), so Value splits storage into a numeric bit
// pattern and a separate object field. Producer/consumer agreement is
// unchanged: arithmetic, comparison, and local opcodes only ever touch bits;
// only STR_CONST-family opcodes populate obj.
type Value struct {
	bits uint64
	obj  object.Object
}

// ValueInt64 returns a Value whose bits encode x as a signed 64-bit integer.
func ValueInt64(x int64) Value { return Value{bits: uint64(x)} }

// ValueUint64 returns a Value whose bits encode x as an unsigned 64-bit
// integer.
func ValueUint64(x uint64) Value { return Value{bits: x} }

// ValueFloat64 returns a Value whose bits encode x as an IEEE-754 double.
func ValueFloat64(x float64) Value { return Value{bits: math.Float64bits(x)} }

// ValueBool returns a Value whose bits encode x per the truthiness
// convention (0 is false, 1 is true).
func ValueBool(x bool) Value {
	if x {
		return Value{bits: 1}
	}
	return Value{bits: 0}
}

// ValueObject returns a Value holding a non-owning reference to obj.
func ValueObject(obj object.Object) Value { return Value{obj: obj} }

// Int64 interprets the Value's bits as a signed 64-bit integer.
func (v Value) Int64() int64 { return int64(v.bits) }

// Uint64 interprets the Value's bits as an unsigned 64-bit integer.
func (v Value) Uint64() uint64 { return v.bits }

// Float64 interprets the Value's bits as an IEEE-754 double.
func (v Value) Float64() float64 { return math.Float64frombits(v.bits) }

// Bool interprets the Value per the truthiness convention: false iff the
// integer view is 0.
func (v Value) Bool() bool { return v.bits != 0 }

// Object returns the object this Value refers to, or nil if this cell is
// numeric.
func (v Value) Object() object.Object { return v.obj }

// IsObject reports whether this Value was produced as an object reference.
func (v Value) IsObject() bool { return v.obj != nil }

// Bits exposes the raw numeric bit pattern, the same pattern Equal compares
// for two non-object values regardless of the producer opcode's intended
// type.
func (v Value) Bits() uint64 { return v.bits }
