package binformat_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaisadilla/judith/binformat"
)

// buildString appends a string-table record: length(u64), bytes, with no
// inter-record padding.
func buildString(buf []byte, s string) []byte {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return buf
}

func buildStringTable(strs ...string) []byte {
	var body []byte
	for _, s := range strs {
		body = buildString(body, s)
	}
	var out []byte
	out = appendU32(out, uint32(len(body))) // table_size
	out = appendU32(out, uint32(len(strs))) // string_count
	out = append(out, body...)
	return out
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

// minimalAssembly builds the bytes of a well-formed assembly file with a
// single block "main", a single function "main" with no code, no params.
func minimalAssembly(t *testing.T) []byte {
	t.Helper()

	var buf []byte
	buf = append(buf, "JUDITH"...)
	buf = append(buf, 0) // endianness byte
	buf = appendU32(buf, 1)
	buf = appendU16(buf, 1) // major
	buf = appendU16(buf, 0) // minor
	buf = appendU16(buf, 0) // patch
	buf = appendU16(buf, 0) // build
	buf = append(buf, buildStringTable("main")...)
	buf = appendU32(buf, 0) // dep_count
	buf = appendU32(buf, 0) // type_ref count
	buf = appendU32(buf, 0) // func_ref count
	buf = appendU32(buf, 1) // block_count

	// block: nameIndex=0, empty string table, type_count=0, func_count=1
	buf = appendU32(buf, 0)
	buf = append(buf, buildStringTable()...)
	buf = appendU32(buf, 0) // type_count

	buf = appendU32(buf, 1) // func_count
	// function: nameIndex=0, param_count=0, maxLocals=0, maxStack=0, code_length=0
	buf = appendU32(buf, 0)
	buf = appendU16(buf, 0)
	buf = appendU16(buf, 0)
	buf = appendU16(buf, 0)
	buf = appendU32(buf, 0)

	return buf
}

func TestDecodeMinimalAssembly(t *testing.T) {
	data := minimalAssembly(t)

	file, err := binformat.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), file.JudithVersion)
	assert.Equal(t, []string{"main"}, file.Names.Strings)
	assert.Len(t, file.Blocks, 1)
	assert.Equal(t, uint32(0), file.Blocks[0].NameIndex)
	assert.Len(t, file.Blocks[0].Functions, 1)
	assert.Equal(t, uint32(0), file.Blocks[0].Functions[0].NameIndex)
}

func TestDecodeBadMagic(t *testing.T) {
	data := minimalAssembly(t)
	data[0] = 'X'

	_, err := binformat.Decode(data)
	assert.ErrorIs(t, err, binformat.ErrBadMagic)
}

func TestDecodeTruncated(t *testing.T) {
	data := minimalAssembly(t)

	_, err := binformat.Decode(data[:len(data)-4])
	assert.ErrorIs(t, err, binformat.ErrTruncated)
}

func TestDecodeNonzeroDepCount(t *testing.T) {
	data := minimalAssembly(t)

	// dep_count sits right after the name table; patch it to a nonzero value.
	// Recompute its offset the same way Decode reads the file, rather than
	// hardcoding a byte index, so this test doesn't rot if the header layout
	// above changes.
	depCountOffset := 6 + 1 + 4 + 8 + len(buildStringTable("main"))
	binary.LittleEndian.PutUint32(data[depCountOffset:], 1)

	_, err := binformat.Decode(data)
	assert.ErrorIs(t, err, binformat.ErrDependencies)
}
