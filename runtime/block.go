package runtime

import "github.com/kaisadilla/judith/intern"

// Block is a namespace-like grouping inside an Assembly: its own interned
// name, its private interned string table, and its ordered functions.
type Block struct {
	Name      *intern.StringObject
	Strings   []*intern.StringObject
	Functions []*JasmFunction

	// assembly is a back-pointer installed by Assembly's bind pass.
	assembly *Assembly
}

// Assembly returns the assembly this block belongs to, valid only after
// linking has completed.
func (b *Block) Assembly() *Assembly { return b.assembly }

// bindAssembly installs back-pointers on b and everything it owns: its own
// assembly pointer, each function's function-ref-table pointer, and each
// chunk's string-table borrow. It must only run once every Block and
// JasmFunction slice in the Assembly has reached its final backing array, as
// the Design Notes for cyclic back-pointers require (no container may still
// be growing/reallocating when a pointer into it is captured).
func (b *Block) bindAssembly(asm *Assembly) {
	b.assembly = asm
	for _, fn := range b.Functions {
		fn.setFunctionRefs(&asm.FuncRefs)
		fn.Chunk.stringTable = b.Strings
	}
}
