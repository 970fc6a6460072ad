package nn

import "github.com/pkg/errors"

// Registry errors.
var (
	ErrDuplicateField = errors.New("field already registered")
	ErrInvalidField   = errors.New("invalid field")
)
