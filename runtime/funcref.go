package runtime

import "github.com/kaisadilla/judith/native"

// FuncKind discriminates the three shapes a function reference can take.
// Modeled as a tagged sum type: a two-table indirection (a references array
// of variants paired with a separately-stored array of dispatch pointers)
// collapses here into one FuncRef per entry, carrying both the kind and
// whatever has already been resolved for it.
type FuncKind uint8

const (
	RefInternal FuncKind = iota
	RefNative
	RefExternal
)

// FuncRef is one entry of an assembly's FunctionCollection: a polymorphic
// reference to a callable, resolved at link time.
type FuncRef struct {
	Kind FuncKind

	// Internal is set when Kind == RefInternal: the resolved target function
	// within this same assembly.
	Internal *JasmFunction

	// Native is set when Kind == RefNative: the resolved native function.
	Native native.Function

	// ExternalBlockName/ExternalItemName are set when Kind == RefExternal.
	// External reference resolution is not implemented; a FuncRef of this
	// kind is always invalid to invoke, and linking fails eagerly on
	// encountering one rather than deferring to first call.
	ExternalBlockName string
	ExternalItemName  string
}

// FunctionCollection is an assembly-level, fixed-size array of FuncRefs,
// indexed by CALL's operand.
type FunctionCollection struct {
	Refs []FuncRef
}

// At returns the FuncRef at index i, or false if i is out of range.
func (fc *FunctionCollection) At(i uint32) (*FuncRef, bool) {
	if int(i) >= len(fc.Refs) {
		return nil, false
	}
	return &fc.Refs[i], true
}

// Len returns the number of entries in the collection.
func (fc *FunctionCollection) Len() int { return len(fc.Refs) }
