// Package native implements the VM's fixed, built-in native assembly: a
// small, constant-indexed set of primitive types and native functions that
// the bytecode references by small integer tag through NativeRef entries.
//
// This package only holds the metadata (tags and interned names); the actual
// behavior of a native function (what Print writes, what Readln reads from)
// is implemented by the interpreter in package vm, exactly as the original
// C++ VM keeps NativeFunctions::print etc. as free functions taking a VM&
// rather than as self-contained objects.
package native

import "github.com/kaisadilla/judith/intern"

// TypeTag identifies one of the native assembly's built-in types.
type TypeTag uint8

const (
	I8 TypeTag = iota
	I16
	I32
	I64
	UI8
	UI16
	UI32
	UI64
	F32
	F64
	BigInt
	Decimal
	Bool
	String
	Regex

	numTypes
)

var typeNames = [numTypes]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	UI8: "ui8", UI16: "ui16", UI32: "ui32", UI64: "ui64",
	F32: "f32", F64: "f64",
	BigInt:  "bigint",
	Decimal: "decimal",
	Bool:    "bool",
	String:  "string",
	Regex:   "regex",
}

// Type is a native assembly type entry. Most are referenced by identity
// only: the interpreter does not dispatch on type.
type Type struct {
	Tag  TypeTag
	Name *intern.StringObject
}

// FuncTag identifies one of the native assembly's built-in functions.
type FuncTag uint8

const (
	Error FuncTag = iota
	Print
	Println
	Readln

	numFuncs
)

var funcNames = [numFuncs]string{
	Error:   "error",
	Print:   "print",
	Println: "println",
	Readln:  "readln",
}

// Function is a native assembly function entry.
type Function struct {
	Tag  FuncTag
	Name *intern.StringObject
}

// Assembly is the fixed, built-in set of native types and functions, indexed
// by small integer tag as required by NativeRef entries. A fresh Assembly is
// built per VM instance (see judith.VM) — it is never a package-level
// singleton, since the VM must be constructible multiple times independently.
type Assembly struct {
	Types     [numTypes]Type
	Functions [numFuncs]Function
}

// NewAssembly builds the native assembly, interning every type and function
// name into strings.
func NewAssembly(strings *intern.Table) *Assembly {
	a := &Assembly{}
	for tag, name := range typeNames {
		a.Types[tag] = Type{Tag: TypeTag(tag), Name: strings.Intern(name)}
	}
	for tag, name := range funcNames {
		a.Functions[tag] = Function{Tag: FuncTag(tag), Name: strings.Intern(name)}
	}
	return a
}

// NumFunctions returns the number of native functions, for Native ref bounds
// checking during linking.
func NumFunctions() int { return int(numFuncs) }

// NumTypes returns the number of native types.
func NumTypes() int { return int(numTypes) }
