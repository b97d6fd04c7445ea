package binformat

import "errors"

// Load-tier errors: fatal, the VM never starts.
var (
	ErrTruncated     = errors.New("truncated or corrupt assembly file")
	ErrBadMagic      = errors.New("not a JUDITH assembly file (bad magic)")
	ErrDependencies  = errors.New("assembly dependencies are not implemented")
	ErrUnknownRefType = errors.New("unknown item reference type")
	ErrUnknownTypes  = errors.New("block-local type declarations are not implemented")
)
