package tensor

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
)

// Tensor is a strided view over a shared Storage.
//
// The Tensor itself owns only its (shape, strides, offset) descriptor: element
// idx lives at Storage position offset + Σ idx[i]*strides[i]. Several Tensors
// may reference the same Storage, e.g. a matrix and its transpose.
//
// Example:
//
//	m, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
//	mt, _ := m.Transpose(0, 1) // Shape [3, 2], strides [1, 3], same storage
//	mt.Get(2, 1)                // 6
type Tensor struct {
	storage *Storage
	shape   Shape
	strides []int
	offset  int
}

// newTensor creates a contiguous tensor over fresh storage.
func newTensor(shape Shape) *Tensor {
	return &Tensor{
		storage: NewStorage(shape.NumElements()),
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Offset returns the storage position of the first element.
func (t *Tensor) Offset() int {
	return t.offset
}

// Storage returns the shared buffer backing this view.
func (t *Tensor) Storage() *Storage {
	return t.storage
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// SharesStorage reports whether t and other are views over the same buffer.
func (t *Tensor) SharesStorage(other *Tensor) bool {
	return t.storage == other.storage
}

// IsContiguous reports whether the strides equal the row-major strides of
// the shape, i.e. the elements occupy storage in order with no gaps.
// Dimensions of size 1 are ignored since their stride is never used.
func (t *Tensor) IsContiguous() bool {
	expected := t.shape.ComputeStrides()
	for i, s := range t.strides {
		if t.shape[i] != 1 && s != expected[i] {
			return false
		}
	}
	return true
}

// Position maps a multi-index to its storage position.
// Panics if the number of indices or any index is out of bounds.
func (t *Tensor) Position(indices ...int) int {
	if len(indices) != len(t.shape) {
		exceptions.Panicf("tensor of shape %v expects %d indices, got %d", t.shape, len(t.shape), len(indices))
	}
	pos := t.offset
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			exceptions.Panicf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i])
		}
		pos += idx * t.strides[i]
	}
	return pos
}

// Get returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Get(indices ...int) float64 {
	return t.storage.data[t.Position(indices...)]
}

// Set sets the element at the given indices.
//
// Set writes into the shared storage: every view aliasing this element sees
// the new value. Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.storage.data[t.Position(indices...)] = value
}

// Item returns the value of a single-element tensor.
func (t *Tensor) Item() float64 {
	if t.NumElements() != 1 {
		exceptions.Panicf("Item() only works for single-element tensors, got shape %v", t.shape)
	}
	return t.storage.data[t.offset]
}

// Fill writes value into every element of the view (in place, aliasing).
func (t *Tensor) Fill(value float64) {
	t.ForEachPosition(func(_, pos int) {
		t.storage.data[pos] = value
	})
}

// ForEachPosition calls f(ordinal, position) for every element in row-major
// logical order, where ordinal counts elements and position is the storage index.
func (t *Tensor) ForEachPosition(f func(ordinal, pos int)) {
	n := t.NumElements()
	if t.IsContiguous() {
		for i := 0; i < n; i++ {
			f(i, t.offset+i)
		}
		return
	}
	idx := make([]int, len(t.shape))
	for i := 0; i < n; i++ {
		UnravelIndex(i, t.shape, idx)
		f(i, PositionOf(idx, t.strides, t.offset))
	}
}

// ToSlice returns a fresh slice with the elements in row-major logical order.
func (t *Tensor) ToSlice() []float64 {
	out := make([]float64, t.NumElements())
	t.ForEachPosition(func(i, pos int) {
		out[i] = t.storage.data[pos]
	})
	return out
}

// Clone returns a deep, contiguous copy with its own storage.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		storage: storageFrom(t.ToSlice()),
		shape:   t.shape.Clone(),
		strides: t.shape.ComputeStrides(),
	}
}

// CopyOnWrite makes the view safe to mutate: if the storage is shared with
// another view (or the view is not contiguous), the data is copied into a
// private contiguous buffer and the old reference released.
func (t *Tensor) CopyOnWrite() {
	if !t.storage.IsShared() && t.IsContiguous() && t.offset == 0 && t.storage.Len() == t.NumElements() {
		return
	}
	fresh := storageFrom(t.ToSlice())
	t.storage.release()
	t.storage = fresh
	t.strides = t.shape.ComputeStrides()
	t.offset = 0
}

// Release drops this view's reference to its storage.
func (t *Tensor) Release() {
	t.storage.release()
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if t.NumElements() <= 16 {
		return fmt.Sprintf("Tensor%v%v", t.shape, t.ToSlice())
	}
	return fmt.Sprintf("Tensor%v(%s elements, strides=%v)", t.shape, humanize.Comma(int64(t.NumElements())), t.strides)
}

// UnravelIndex converts a row-major ordinal into a multi-index for shape,
// writing it into out (which must have len(shape) entries).
func UnravelIndex(ordinal int, shape Shape, out []int) {
	for d := len(shape) - 1; d >= 0; d-- {
		out[d] = ordinal % shape[d]
		ordinal /= shape[d]
	}
}

// PositionOf maps a multi-index to a storage position without bounds checks.
func PositionOf(idx, strides []int, offset int) int {
	pos := offset
	for i, v := range idx {
		pos += v * strides[i]
	}
	return pos
}
