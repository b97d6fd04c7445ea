package runtime

import "github.com/kaisadilla/judith/intern"

// Assembly is the linked, in-memory form of one loaded JUDITH binary: its
// interned name table, its blocks, and its resolved function-reference
// table. StemName is the file-stem the VM registered it under, kept here
// for error messages and for re-lookup by external refs once those are
// implemented.
type Assembly struct {
	StemName string
	Names    []*intern.StringObject
	Blocks   []*Block
	FuncRefs FunctionCollection
}

// Bind installs every back-pointer that cyclic references require (each
// Block's Assembly pointer, each JasmFunction's function-ref-table pointer,
// each Chunk's string-table borrow). It must run exactly once, after every
// Block and JasmFunction has reached its final backing storage — see the
// Design Notes' two-phase-build guidance for cyclic back-pointers.
func (a *Assembly) Bind() {
	for _, b := range a.Blocks {
		b.bindAssembly(a)
	}
}

// Block returns the block at index i, or nil if out of range.
func (a *Assembly) Block(i int) *Block {
	if i < 0 || i >= len(a.Blocks) {
		return nil
	}
	return a.Blocks[i]
}

// Name returns the interned name-table entry at index i, or nil if out of
// range.
func (a *Assembly) Name(i uint32) *intern.StringObject {
	if int(i) >= len(a.Names) {
		return nil
	}
	return a.Names[i]
}
