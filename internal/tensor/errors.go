package tensor

import "github.com/pkg/errors"

// Common errors.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrInvalidShape    = errors.New("invalid shape")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidView     = errors.New("view does not fit in storage")
)
