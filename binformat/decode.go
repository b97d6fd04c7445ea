package binformat

import "fmt"

var magic = [6]byte{'J', 'U', 'D', 'I', 'T', 'H'}

// Decode parses the full contents of a JUDITH assembly file, following its
// exact on-disk field order. It performs no linking and executes no code; a
// successfully decoded AssemblyFile mirrors the on-disk layout verbatim.
func Decode(data []byte) (*AssemblyFile, error) {
	r := NewReader(data)

	magicBytes, err := r.Bytes(6)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	for i, b := range magicBytes {
		if b != magic[i] {
			return nil, ErrBadMagic
		}
	}

	if _, err := r.U8(); err != nil { // endianness, discarded: little-endian is mandatory
		return nil, fmt.Errorf("reading endianness: %w", err)
	}

	judithVersion, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading judith_version: %w", err)
	}

	version, err := readVersion(r)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}

	names, err := readStringTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading name table: %w", err)
	}

	depCount, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading dep_count: %w", err)
	}
	if depCount != 0 {
		return nil, fmt.Errorf("%w: dep_count=%d", ErrDependencies, depCount)
	}

	typeRefs, err := readItemRefTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading type_ref table: %w", err)
	}

	funcRefs, err := readItemRefTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading func_ref table: %w", err)
	}

	blockCount, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading block_count: %w", err)
	}

	blocks := make([]Block, blockCount)
	for i := range blocks {
		b, err := readBlock(r)
		if err != nil {
			return nil, fmt.Errorf("reading block %d: %w", i, err)
		}
		blocks[i] = b
	}

	return &AssemblyFile{
		JudithVersion: judithVersion,
		Version:       version,
		Names:         names,
		TypeRefs:      typeRefs,
		FuncRefs:      funcRefs,
		Blocks:        blocks,
	}, nil
}

func readVersion(r *Reader) (Version, error) {
	var v Version
	var err error
	if v.Major, err = r.U16(); err != nil {
		return v, err
	}
	if v.Minor, err = r.U16(); err != nil {
		return v, err
	}
	if v.Patch, err = r.U16(); err != nil {
		return v, err
	}
	if v.Build, err = r.U16(); err != nil {
		return v, err
	}
	return v, nil
}

// readStringTable reads table_size (informational only; the reader tracks
// its own position independently), string_count, and that many
// [length:u64][bytes] records, back to back with no inter-record padding.
// The 8-byte alignment some in-memory representations give these records is
// not part of the wire format.
func readStringTable(r *Reader) (StringTable, error) {
	if _, err := r.U32(); err != nil { // table_size, informational
		return StringTable{}, fmt.Errorf("reading table_size: %w", err)
	}

	count, err := r.U32()
	if err != nil {
		return StringTable{}, fmt.Errorf("reading string_count: %w", err)
	}

	strs := make([]string, count)
	for i := range strs {
		length, err := r.U64()
		if err != nil {
			return StringTable{}, fmt.Errorf("reading string %d length: %w", i, err)
		}
		b, err := r.Bytes(int(length))
		if err != nil {
			return StringTable{}, fmt.Errorf("reading string %d bytes: %w", i, err)
		}
		strs[i] = string(b)
	}

	return StringTable{Strings: strs}, nil
}

func readItemRefTable(r *Reader) ([]ItemRef, error) {
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading count: %w", err)
	}

	refs := make([]ItemRef, count)
	for i := range refs {
		kindVal, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("reading ref %d type: %w", i, err)
		}

		ref := ItemRef{Kind: ItemRefKind(kindVal)}
		switch ref.Kind {
		case RefInternal:
			if ref.Block, err = r.U32(); err != nil {
				return nil, fmt.Errorf("reading ref %d block: %w", i, err)
			}
			if ref.Index, err = r.U32(); err != nil {
				return nil, fmt.Errorf("reading ref %d index: %w", i, err)
			}
		case RefNative:
			if ref.Index, err = r.U32(); err != nil {
				return nil, fmt.Errorf("reading ref %d index: %w", i, err)
			}
		case RefExternal:
			if ref.BlockNameIndex, err = r.U32(); err != nil {
				return nil, fmt.Errorf("reading ref %d block name index: %w", i, err)
			}
			if ref.ItemNameIndex, err = r.U32(); err != nil {
				return nil, fmt.Errorf("reading ref %d item name index: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownRefType, kindVal)
		}
		refs[i] = ref
	}

	return refs, nil
}

func readBlock(r *Reader) (Block, error) {
	nameIndex, err := r.U32()
	if err != nil {
		return Block{}, fmt.Errorf("reading name index: %w", err)
	}

	strings, err := readStringTable(r)
	if err != nil {
		return Block{}, fmt.Errorf("reading string table: %w", err)
	}

	typeCount, err := r.U32()
	if err != nil {
		return Block{}, fmt.Errorf("reading type_count: %w", err)
	}
	if typeCount != 0 {
		return Block{}, fmt.Errorf("%w: type_count=%d", ErrUnknownTypes, typeCount)
	}

	funcCount, err := r.U32()
	if err != nil {
		return Block{}, fmt.Errorf("reading func_count: %w", err)
	}

	funcs := make([]Function, funcCount)
	for i := range funcs {
		fn, err := readFunction(r)
		if err != nil {
			return Block{}, fmt.Errorf("reading function %d: %w", i, err)
		}
		funcs[i] = fn
	}

	return Block{NameIndex: nameIndex, Strings: strings, Functions: funcs}, nil
}

func readFunction(r *Reader) (Function, error) {
	nameIndex, err := r.U32()
	if err != nil {
		return Function{}, fmt.Errorf("reading name index: %w", err)
	}

	paramCount, err := r.U16()
	if err != nil {
		return Function{}, fmt.Errorf("reading param_count: %w", err)
	}

	params := make([]Param, paramCount)
	for i := range params {
		nameIdx, err := r.U32()
		if err != nil {
			return Function{}, fmt.Errorf("reading param %d name index: %w", i, err)
		}
		params[i] = Param{NameIndex: nameIdx}
	}

	maxLocals, err := r.U16()
	if err != nil {
		return Function{}, fmt.Errorf("reading max_locals: %w", err)
	}

	maxStack, err := r.U16()
	if err != nil {
		return Function{}, fmt.Errorf("reading max_stack: %w", err)
	}

	codeLength, err := r.U32()
	if err != nil {
		return Function{}, fmt.Errorf("reading code_length: %w", err)
	}

	code, err := r.Bytes(int(codeLength))
	if err != nil {
		return Function{}, fmt.Errorf("reading code: %w", err)
	}
	// Own a copy: Bytes aliases the decoder's input buffer, which the caller
	// may reuse or discard once Decode returns.
	owned := make([]byte, len(code))
	copy(owned, code)

	return Function{
		NameIndex: nameIndex,
		Params:    params,
		MaxLocals: maxLocals,
		MaxStack:  maxStack,
		Code:      owned,
	}, nil
}
