package runtime

import "github.com/kaisadilla/judith/intern"

// Chunk is the executable body of a single function: the raw code bytes,
// plus a borrow of its enclosing block's interned string-table vector (so
// STR_CONST can resolve an index without walking back through Block/
// Assembly on every instruction). The borrow is only valid once Assembly's
// bind pass has run; see Block.bindAssembly.
type Chunk struct {
	Code []byte

	// stringTable is a borrow of the enclosing Block's Strings slice,
	// installed by Assembly's bind-references pass.
	stringTable []*intern.StringObject
}

// StringAt returns the interned string at index i of the chunk's block
// string table, or false if i is out of range. Bounds-checked because i
// comes directly from a STR_CONST/STR_CONST_L operand, which a malformed or
// adversarial bytecode stream controls.
func (c *Chunk) StringAt(i uint32) (*intern.StringObject, bool) {
	if int(i) >= len(c.stringTable) {
		return nil, false
	}
	return c.stringTable[i], true
}
