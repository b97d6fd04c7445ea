package binformat

// Version is an assembly's own semantic version, as stored in the header.
type Version struct {
	Major, Minor, Patch, Build uint16
}

// ItemRefKind discriminates the three wire encodings of an ItemRef.
type ItemRefKind uint32

const (
	RefInternal ItemRefKind = 0
	RefNative   ItemRefKind = 1
	RefExternal ItemRefKind = 2
)

// ItemRef is one entry of a type-ref or func-ref table. Only the fields
// relevant to Kind are meaningful; this mirrors the union-like on-disk
// encoding (a refType tag followed by a variant-specific payload) without
// needing three distinct Go types, since the loader only ever switches on
// Kind once per entry.
type ItemRef struct {
	Kind ItemRefKind

	// Internal
	Block, Index uint32

	// Native
	// (Index is reused for the native table index.)

	// External
	BlockNameIndex, ItemNameIndex uint32
}

// StringTable is the decoded form of a packed on-disk string table: simply
// the ordered list of strings, ordinal-addressable. Go's garbage-collected
// []string already gives correct, safe, ordinal-addressable lookup without
// reconstructing the packed-blob-plus-offset-index representation the file
// format uses on disk.
type StringTable struct {
	Strings []string
}

// Param is a single formal parameter as read from the file: only a name
// index.
type Param struct {
	NameIndex uint32
}

// Function is the on-disk form of a function: a name, its declared
// parameters, its locals/stack limits, and its raw code bytes.
type Function struct {
	NameIndex uint32
	Params    []Param
	MaxLocals uint16
	MaxStack  uint16
	Code      []byte
}

// Block is the on-disk form of a block: a name index (into the enclosing
// assembly's name table), its own private string table, and its functions.
// A block's declared type count is validated elsewhere and must currently
// be zero; user-defined types are not yet a thing this loader produces.
type Block struct {
	NameIndex uint32
	Strings   StringTable
	Functions []Function
}

// AssemblyFile is the full in-memory mirror of one on-disk JUDITH assembly.
// Its declared dependency count is validated elsewhere and must currently be
// zero; a nonzero count is a deferred-feature load error.
type AssemblyFile struct {
	JudithVersion uint32
	Version       Version
	Names         StringTable
	TypeRefs      []ItemRef
	FuncRefs      []ItemRef
	Blocks        []Block
}
