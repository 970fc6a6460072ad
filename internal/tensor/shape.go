package tensor

import (
	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
// An empty Shape describes a scalar (rank 0, one element).
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidShape, "dimension at index %d is %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed,
// and an error wrapping ErrShapeMismatch if the shapes are incompatible.
//
// Examples:
//
//	(3, 1) + (1, 4) → (3, 4), true, nil
//	(5,)   + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, ErrShapeMismatch
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aDim := dimFromRight(a, i)
		bDim := dimFromRight(b, i)

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, errors.Wrapf(ErrShapeMismatch,
				"shapes %v and %v not broadcastable (dimension %d: %d vs %d)", a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// dimFromRight returns the i-th dimension counting from the last one,
// treating missing leading dimensions as 1.
func dimFromRight(s Shape, i int) int {
	idx := len(s) - 1 - i
	if idx < 0 {
		return 1
	}
	return s[idx]
}

// BroadcastStrides returns the strides that address a tensor of shape `from`
// (with the given strides) as if it had shape `to`. Padded leading dimensions
// and dimensions of size 1 that are expanded get stride 0, so no data is copied.
func BroadcastStrides(from Shape, strides []int, to Shape) ([]int, error) {
	if len(from) > len(to) {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot broadcast %v to lower rank shape %v", from, to)
	}
	out := make([]int, len(to))
	pad := len(to) - len(from)
	for i := range to {
		j := i - pad
		switch {
		case j < 0:
			out[i] = 0
		case from[j] == to[i]:
			out[i] = strides[j]
		case from[j] == 1:
			out[i] = 0
		default:
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot broadcast %v to %v (dimension %d: %d vs %d)",
				from, to, i, from[j], to[i])
		}
	}
	return out, nil
}

// BroadcastAxes lists the axes of `to` along which a tensor of shape `from`
// was expanded: padded leading axes and axes where `from` has size 1 but `to` does not.
func BroadcastAxes(from, to Shape) []int {
	var axes []int
	pad := len(to) - len(from)
	for i := range to {
		j := i - pad
		if j < 0 || (from[j] == 1 && to[i] != 1) {
			axes = append(axes, i)
		}
	}
	return axes
}

// normalizeDim maps a possibly negative dimension to [0, rank).
func normalizeDim(dim, rank int) (int, error) {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "dimension %d out of range for rank %d", dim, rank)
	}
	return dim, nil
}
