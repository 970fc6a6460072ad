package tensor

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ViewKind tells whether a shape operation returned a view over the
// original storage or a copy into fresh storage.
type ViewKind int

const (
	// Shared means the result aliases the input's storage: writes through
	// either tensor are visible through the other.
	Shared ViewKind = iota
	// Copied means the result owns newly allocated storage.
	Copied
)

// String implements fmt.Stringer.
func (k ViewKind) String() string {
	switch k {
	case Shared:
		return "shared"
	case Copied:
		return "copied"
	default:
		return "unknown"
	}
}

// View creates a zero-copy tensor over t's storage with an explicit
// descriptor. It fails with ErrInvalidView if any addressable element would
// fall outside the storage.
func (t *Tensor) View(shape Shape, strides []int, offset int) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(strides) != len(shape) {
		return nil, errors.Wrapf(ErrInvalidView, "shape %v has rank %d but %d strides given", shape, len(shape), len(strides))
	}
	lo, hi := offset, offset
	for i, s := range strides {
		span := (shape[i] - 1) * s
		if span < 0 {
			lo += span
		} else {
			hi += span
		}
	}
	if lo < 0 || hi >= t.storage.Len() {
		return nil, errors.Wrapf(ErrInvalidView, "view shape=%v strides=%v offset=%d addresses [%d, %d], storage has %d elements",
			shape, strides, offset, lo, hi, t.storage.Len())
	}
	return t.share(shape, strides, offset), nil
}

// share returns a new descriptor over the same storage.
func (t *Tensor) share(shape Shape, strides []int, offset int) *Tensor {
	t.storage.addRef()
	return &Tensor{
		storage: t.storage,
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
		offset:  offset,
	}
}

// Reshape returns a tensor with the same elements in row-major order and a
// new shape. At most one dimension may be -1, in which case it is inferred.
//
// Contiguous tensors are reshaped without copying (Shared). Non-contiguous
// tensors (e.g. a transpose) are first copied into fresh contiguous storage
// (Copied).
func (t *Tensor) Reshape(shape Shape) (*Tensor, ViewKind, error) {
	newShape, err := inferShape(shape, t.NumElements())
	if err != nil {
		return nil, Shared, err
	}
	if t.IsContiguous() {
		return t.share(newShape, newShape.ComputeStrides(), t.offset), Shared, nil
	}
	klog.V(2).Infof("tensor: reshape %v -> %v copies non-contiguous data (strides=%v)", t.shape, newShape, t.strides)
	return &Tensor{
		storage: storageFrom(t.ToSlice()),
		shape:   newShape,
		strides: newShape.ComputeStrides(),
	}, Copied, nil
}

// inferShape resolves a single -1 dimension and checks the element count.
func inferShape(shape Shape, numElements int) (Shape, error) {
	out := shape.Clone()
	inferred := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && inferred < 0:
			inferred = i
		case d <= 0:
			return nil, errors.Wrapf(ErrInvalidShape, "reshape: invalid dimension %d at index %d", d, i)
		default:
			known *= d
		}
	}
	if inferred >= 0 {
		if known == 0 || numElements%known != 0 {
			return nil, errors.Wrapf(ErrShapeMismatch, "reshape: cannot infer dimension of %v for %d elements", shape, numElements)
		}
		out[inferred] = numElements / known
	}
	if out.NumElements() != numElements {
		return nil, errors.Wrapf(ErrShapeMismatch, "reshape: shape %v has %d elements, tensor has %d",
			out, out.NumElements(), numElements)
	}
	return out, nil
}

// Contiguous returns t itself (Shared, with a new reference) when already
// contiguous, otherwise a row-major copy (Copied).
func (t *Tensor) Contiguous() (*Tensor, ViewKind) {
	if t.IsContiguous() {
		return t.share(t.shape, t.strides, t.offset), Shared
	}
	klog.V(2).Infof("tensor: contiguous copy of shape %v (strides=%v)", t.shape, t.strides)
	return t.Clone(), Copied
}

// Permute reorders the dimensions. It only permutes shape and strides: data
// never moves and the result always shares storage.
//
// Example:
//
//	x: shape [2, 3, 4], strides [12, 4, 1]
//	x.Permute(2, 0, 1): shape [4, 2, 3], strides [1, 12, 4]
func (t *Tensor) Permute(order ...int) (*Tensor, error) {
	if len(order) != len(t.shape) {
		return nil, errors.Wrapf(ErrShapeMismatch, "permute: %d axes given for rank %d", len(order), len(t.shape))
	}
	seen := make([]bool, len(order))
	shape := make(Shape, len(order))
	strides := make([]int, len(order))
	for i, axis := range order {
		a, err := normalizeDim(axis, len(t.shape))
		if err != nil {
			return nil, err
		}
		if seen[a] {
			return nil, errors.Wrapf(ErrInvalidShape, "permute: axis %d repeated in %v", a, order)
		}
		seen[a] = true
		shape[i] = t.shape[a]
		strides[i] = t.strides[a]
	}
	return t.share(shape, strides, t.offset), nil
}

// Transpose swaps two dimensions (a Permute).
func (t *Tensor) Transpose(dim0, dim1 int) (*Tensor, error) {
	rank := len(t.shape)
	d0, err := normalizeDim(dim0, rank)
	if err != nil {
		return nil, err
	}
	d1, err := normalizeDim(dim1, rank)
	if err != nil {
		return nil, err
	}
	order := make([]int, rank)
	for i := range order {
		order[i] = i
	}
	order[d0], order[d1] = order[d1], order[d0]
	return t.Permute(order...)
}

// InversePermutation returns the order that undoes Permute(order...).
func InversePermutation(order []int) []int {
	inv := make([]int, len(order))
	for i, axis := range order {
		inv[axis] = i
	}
	return inv
}

// Expand broadcasts t to shape without copying: expanded dimensions get
// stride 0, so every index along them reads the same element.
func (t *Tensor) Expand(shape Shape) (*Tensor, error) {
	strides, err := BroadcastStrides(t.shape, t.strides, shape)
	if err != nil {
		return nil, err
	}
	return t.share(shape, strides, t.offset), nil
}

// Slice restricts dimension dim to [start, end). Only the offset and shape
// change; the result shares storage.
func (t *Tensor) Slice(dim, start, end int) (*Tensor, error) {
	d, err := normalizeDim(dim, len(t.shape))
	if err != nil {
		return nil, err
	}
	if start < 0 || end > t.shape[d] || start >= end {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "slice [%d, %d) invalid for dimension %d of size %d",
			start, end, d, t.shape[d])
	}
	shape := t.shape.Clone()
	shape[d] = end - start
	return t.share(shape, t.strides, t.offset+start*t.strides[d]), nil
}

// Index selects a single position along dim, dropping that dimension.
func (t *Tensor) Index(dim, i int) (*Tensor, error) {
	s, err := t.Slice(dim, i, i+1)
	if err != nil {
		return nil, err
	}
	d, _ := normalizeDim(dim, len(t.shape))
	shape := append(s.shape[:d:d], s.shape[d+1:]...)
	strides := append(s.strides[:d:d], s.strides[d+1:]...)
	s.shape, s.strides = shape, strides
	return s, nil
}

// Unsqueeze inserts a dimension of size 1 at dim. Always a view.
func (t *Tensor) Unsqueeze(dim int) (*Tensor, error) {
	d, err := normalizeDim(dim, len(t.shape)+1)
	if err != nil {
		return nil, err
	}
	shape := make(Shape, 0, len(t.shape)+1)
	strides := make([]int, 0, len(t.shape)+1)
	shape = append(shape, t.shape[:d]...)
	strides = append(strides, t.strides[:d]...)
	shape = append(shape, 1)
	strides = append(strides, 0)
	shape = append(shape, t.shape[d:]...)
	strides = append(strides, t.strides[d:]...)
	return t.share(shape, strides, t.offset), nil
}
