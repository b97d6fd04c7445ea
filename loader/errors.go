package loader

import "errors"

// Link-tier errors: fatal, the assembly fails to load.
var (
	ErrMissingBlock    = errors.New("function reference points to a missing block")
	ErrMissingFunction = errors.New("function reference points to a missing function")
	ErrNativeIndex     = errors.New("function reference points to an out-of-range native index")
	ErrExternalRef     = errors.New("external references are not implemented")
	ErrNameIndex       = errors.New("name index out of range")
)
