// Package loader reads a JUDITH assembly file from disk, decodes it with
// package binformat, and links it into a runtime.Assembly by interning every
// name and string, building blocks and functions, resolving every function
// reference, and finally binding the back-pointers that the interpreter
// relies on.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/kaisadilla/judith/binformat"
	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/native"
	"github.com/kaisadilla/judith/runtime"
)

// LoadFile reads, decodes, and links the assembly at path, interning its
// names and strings into strings and resolving native refs against nat. The
// returned Assembly's StemName is the file's base name without extension:
// the file name's stem becomes the assembly name.
func LoadFile(path string, strings_ *intern.Table, nat *native.Assembly) (*runtime.Assembly, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	file, err := binformat.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	asm, err := Link(file, strings_, nat)
	if err != nil {
		return nil, fmt.Errorf("linking %s: %w", path, err)
	}

	base := filepath.Base(path)
	asm.StemName = strings.TrimSuffix(base, filepath.Ext(base))
	return asm, nil
}

// Link turns a decoded AssemblyFile into a linked runtime.Assembly, in a
// fixed order: intern names, build blocks and functions, resolve function
// references, then bind back-pointers.
func Link(file *binformat.AssemblyFile, strings *intern.Table, nat *native.Assembly) (*runtime.Assembly, error) {
	asm := &runtime.Assembly{
		Names: strings.InternAll(file.Names.Strings),
	}
	asm.FuncRefs.Refs = make([]runtime.FuncRef, len(file.FuncRefs))
	asm.Blocks = make([]*runtime.Block, len(file.Blocks))

	name := func(i uint32) (*intern.StringObject, error) {
		if int(i) >= len(asm.Names) {
			return nil, fmt.Errorf("%w: %d (name table has %d entries)", ErrNameIndex, i, len(asm.Names))
		}
		return asm.Names[i], nil
	}

	for bi, fb := range file.Blocks {
		blkName, err := name(fb.NameIndex)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", bi, err)
		}

		blk := &runtime.Block{
			Name:      blkName,
			Strings:   strings.InternAll(fb.Strings.Strings),
			Functions: make([]*runtime.JasmFunction, len(fb.Functions)),
		}

		for fi, ff := range fb.Functions {
			fnName, err := name(ff.NameIndex)
			if err != nil {
				return nil, fmt.Errorf("block %d function %d: %w", bi, fi, err)
			}

			params := make([]runtime.Param, len(ff.Params))
			for pi, p := range ff.Params {
				pName, err := name(p.NameIndex)
				if err != nil {
					return nil, fmt.Errorf("block %d function %d param %d: %w", bi, fi, pi, err)
				}
				params[pi] = runtime.Param{Name: pName}
			}

			blk.Functions[fi] = &runtime.JasmFunction{
				Name:      fnName,
				Params:    params,
				MaxLocals: ff.MaxLocals,
				MaxStack:  ff.MaxStack,
				Chunk:     runtime.Chunk{Code: ff.Code},
			}
		}

		asm.Blocks[bi] = blk
	}

	for i, ref := range file.FuncRefs {
		resolved, err := resolveFuncRef(asm, nat, ref)
		if err != nil {
			return nil, fmt.Errorf("function ref %d: %w", i, err)
		}
		asm.FuncRefs.Refs[i] = resolved
	}

	// Bind pass: every Block/JasmFunction slice has reached its final backing
	// array by this point, so back-pointers are now safe to install.
	asm.Bind()

	return asm, nil
}

func resolveFuncRef(asm *runtime.Assembly, nat *native.Assembly, ref binformat.ItemRef) (runtime.FuncRef, error) {
	switch ref.Kind {
	case binformat.RefInternal:
		if int(ref.Block) >= len(asm.Blocks) {
			return runtime.FuncRef{}, fmt.Errorf("%w: block %d (have %s)",
				ErrMissingBlock, ref.Block, blockNameList(asm))
		}
		blk := asm.Blocks[ref.Block]
		if int(ref.Index) >= len(blk.Functions) {
			return runtime.FuncRef{}, fmt.Errorf("%w: function %d in block %d (block has %d functions)",
				ErrMissingFunction, ref.Index, ref.Block, len(blk.Functions))
		}
		return runtime.FuncRef{Kind: runtime.RefInternal, Internal: blk.Functions[ref.Index]}, nil

	case binformat.RefNative:
		if int(ref.Index) >= native.NumFunctions() {
			return runtime.FuncRef{}, fmt.Errorf("%w: %d", ErrNativeIndex, ref.Index)
		}
		return runtime.FuncRef{Kind: runtime.RefNative, Native: nat.Functions[ref.Index]}, nil

	case binformat.RefExternal:
		blockName, _ := safeName(asm, ref.BlockNameIndex)
		itemName, _ := safeName(asm, ref.ItemNameIndex)
		return runtime.FuncRef{}, fmt.Errorf("%w: %s.%s", ErrExternalRef, blockName, itemName)

	default:
		return runtime.FuncRef{}, fmt.Errorf("%w: %d", binformat.ErrUnknownRefType, ref.Kind)
	}
}

func safeName(asm *runtime.Assembly, i uint32) (string, bool) {
	if int(i) >= len(asm.Names) {
		return "<out of range>", false
	}
	return asm.Names[i].String(), true
}

// blockNameList returns a sorted, comma-joined list of the assembly's known
// block names, used to make "missing block" errors actionable.
func blockNameList(asm *runtime.Assembly) string {
	names := make([]string, len(asm.Blocks))
	for i, b := range asm.Blocks {
		names[i] = b.Name.String()
	}
	slices.Sort(names)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
