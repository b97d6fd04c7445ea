package runtime

import "github.com/kaisadilla/judith/intern"

// Param is a single formal parameter: only a name is carried, as in the
// on-disk binary format.
type Param struct {
	Name *intern.StringObject
}

// JasmFunction is a function defined inside a Block: its interned name, its
// parameter list, its declared locals/stack limits, and the Chunk holding
// its code.
type JasmFunction struct {
	Name       *intern.StringObject
	Params     []Param
	MaxLocals  uint16
	MaxStack   uint16
	Chunk      Chunk

	// collection is a back-pointer to the enclosing assembly's function
	// reference table, installed by Assembly's bind pass. It lets a running
	// function resolve CALL targets without needing a separate pointer
	// threaded through every call.
	collection *FunctionCollection
}

// FunctionRefs returns the FunctionCollection of the assembly this function
// belongs to, valid only after linking has completed.
func (f *JasmFunction) FunctionRefs() *FunctionCollection { return f.collection }

func (f *JasmFunction) setFunctionRefs(fc *FunctionCollection) { f.collection = fc }
