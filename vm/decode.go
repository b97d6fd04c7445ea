package vm

import (
	"encoding/binary"
	"fmt"
)

// readU8 through readU64 read a fixed-width little-endian immediate operand
// out of code at *ip, advancing *ip past it. They are the code-stream analog
// of package binformat's Reader, reused here instead of imported because a
// Chunk's code is an in-memory []byte slice the interpreter walks with a
// plain cursor, not a file being decoded once; a function's code is only
// ever read this way.
func readU8(code []byte, ip *uint32) (uint8, error) {
	if int(*ip)+1 > len(code) {
		return 0, fmt.Errorf("%w: offset %d", ErrTruncatedCode, *ip)
	}
	b := code[*ip]
	*ip++
	return b, nil
}

func readI8(code []byte, ip *uint32) (int8, error) {
	b, err := readU8(code, ip)
	return int8(b), err
}

func readU16(code []byte, ip *uint32) (uint16, error) {
	if int(*ip)+2 > len(code) {
		return 0, fmt.Errorf("%w: offset %d", ErrTruncatedCode, *ip)
	}
	v := binary.LittleEndian.Uint16(code[*ip:])
	*ip += 2
	return v, nil
}

func readU32(code []byte, ip *uint32) (uint32, error) {
	if int(*ip)+4 > len(code) {
		return 0, fmt.Errorf("%w: offset %d", ErrTruncatedCode, *ip)
	}
	v := binary.LittleEndian.Uint32(code[*ip:])
	*ip += 4
	return v, nil
}

func readI32(code []byte, ip *uint32) (int32, error) {
	v, err := readU32(code, ip)
	return int32(v), err
}

func readU64(code []byte, ip *uint32) (uint64, error) {
	if int(*ip)+8 > len(code) {
		return 0, fmt.Errorf("%w: offset %d", ErrTruncatedCode, *ip)
	}
	v := binary.LittleEndian.Uint64(code[*ip:])
	*ip += 8
	return v, nil
}

// readOffset reads a jump displacement: one signed byte if !wide, or a
// signed 32-bit value if wide, matching JMP/JTRUE/JFALSE's narrow forms
// versus their _L siblings.
func readOffset(code []byte, ip *uint32, wide bool) (int32, error) {
	if wide {
		return readI32(code, ip)
	}
	off, err := readI8(code, ip)
	return int32(off), err
}
