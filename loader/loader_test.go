package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaisadilla/judith/binformat"
	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/loader"
	"github.com/kaisadilla/judith/native"
	"github.com/kaisadilla/judith/runtime"
)

// oneBlockOneFunc builds the decoded form of an assembly with a single
// block "main" holding a single function "main", with the given func refs.
func oneBlockOneFunc(code []byte, funcRefs []binformat.ItemRef) *binformat.AssemblyFile {
	return &binformat.AssemblyFile{
		JudithVersion: 1,
		Names:         binformat.StringTable{Strings: []string{"main"}},
		FuncRefs:      funcRefs,
		Blocks: []binformat.Block{
			{
				NameIndex: 0,
				Functions: []binformat.Function{
					{NameIndex: 0, MaxLocals: 0, MaxStack: 8, Code: code},
				},
			},
		},
	}
}

func TestLinkSucceeds(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := oneBlockOneFunc(nil, []binformat.ItemRef{
		{Kind: binformat.RefNative, Index: uint32(native.Print)},
	})

	asm, err := loader.Link(file, strings, nat)
	require.NoError(t, err)

	require.Len(t, asm.Blocks, 1)
	require.Len(t, asm.Blocks[0].Functions, 1)
	fn := asm.Blocks[0].Functions[0]
	assert.Equal(t, "main", fn.Name.String())

	ref, ok := fn.FunctionRefs().At(0)
	require.True(t, ok)
	assert.Equal(t, runtime.RefNative, ref.Kind)
	assert.Equal(t, native.Print, ref.Native.Tag)
}

func TestLinkMissingBlock(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := oneBlockOneFunc(nil, []binformat.ItemRef{
		{Kind: binformat.RefInternal, Block: 5, Index: 0},
	})

	_, err := loader.Link(file, strings, nat)
	assert.ErrorIs(t, err, loader.ErrMissingBlock)
}

func TestLinkMissingFunction(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := oneBlockOneFunc(nil, []binformat.ItemRef{
		{Kind: binformat.RefInternal, Block: 0, Index: 3},
	})

	_, err := loader.Link(file, strings, nat)
	assert.ErrorIs(t, err, loader.ErrMissingFunction)
}

func TestLinkNativeIndexOutOfRange(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := oneBlockOneFunc(nil, []binformat.ItemRef{
		{Kind: binformat.RefNative, Index: 999},
	})

	_, err := loader.Link(file, strings, nat)
	assert.ErrorIs(t, err, loader.ErrNativeIndex)
}

func TestLinkExternalRefFails(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := oneBlockOneFunc(nil, []binformat.ItemRef{
		{Kind: binformat.RefExternal, BlockNameIndex: 0, ItemNameIndex: 0},
	})

	_, err := loader.Link(file, strings, nat)
	assert.ErrorIs(t, err, loader.ErrExternalRef)
}

func TestLinkBindsChunkStringTable(t *testing.T) {
	strings := intern.New()
	nat := native.NewAssembly(strings)

	file := &binformat.AssemblyFile{
		Names: binformat.StringTable{Strings: []string{"main"}},
		Blocks: []binformat.Block{
			{
				NameIndex: 0,
				Strings:   binformat.StringTable{Strings: []string{"hello"}},
				Functions: []binformat.Function{
					{NameIndex: 0, Code: nil},
				},
			},
		},
	}

	asm, err := loader.Link(file, strings, nat)
	require.NoError(t, err)

	so, ok := asm.Blocks[0].Functions[0].Chunk.StringAt(0)
	require.True(t, ok)
	assert.Equal(t, "hello", so.String())
}
