package tensor

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t, err := tensor.Zeros(Shape{3, 4})
func Zeros(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	// Data is already zero-initialized by make()
	return newTensor(shape), nil
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) (*Tensor, error) {
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	data := t.storage.data
	for i := range data {
		data[i] = value
	}
	return t, nil
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*Tensor, error) {
	return Full(shape, 1)
}

// Scalar creates a rank-0 tensor holding v.
func Scalar(v float64) *Tensor {
	t := newTensor(Shape{})
	t.storage.data[0] = v
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	t := newTensor(shape)
	copy(t.storage.data, data)
	return t, nil
}

// FromStorage creates a contiguous tensor over existing storage without
// copying; the tensor takes a new reference on it.
func FromStorage(s *Storage, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() > s.Len() {
		return nil, errors.Wrapf(ErrInvalidView, "shape %v needs %d elements, storage has %d",
			shape, shape.NumElements(), s.Len())
	}
	s.addRef()
	return &Tensor{storage: s, shape: shape.Clone(), strides: shape.ComputeStrides()}, nil
}

// OnesLike creates a contiguous tensor of ones with the same shape as t.
func OnesLike(t *Tensor) *Tensor {
	out := newTensor(t.shape)
	for i := range out.storage.data {
		out.storage.data[i] = 1
	}
	return out
}

// ZerosLike creates a contiguous tensor of zeros with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return newTensor(t.shape)
}

// Randn creates a tensor with random values from a normal distribution (mean=0, std=scale).
// Uses Box-Muller transform for generating normal distribution.
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Randn(shape Shape, scale float64, rng *rand.Rand) (*Tensor, error) {
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	data := t.storage.data
	for i := 0; i < len(data); i += 2 {
		u1 := 1 - rng.Float64() // (0, 1]: avoids log(0)
		u2 := rng.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = scale * r * math.Cos(2.0*math.Pi*u2)
		if i+1 < len(data) {
			data[i+1] = scale * r * math.Sin(2.0*math.Pi*u2)
		}
	}
	return t, nil
}

// Arange creates a 1D tensor with values start, start+1, ..., end-1.
func Arange(start, end int) (*Tensor, error) {
	if end <= start {
		return nil, errors.Wrapf(ErrInvalidShape, "arange: end (%d) must be greater than start (%d)", end, start)
	}
	t := newTensor(Shape{end - start})
	for i := range t.storage.data {
		t.storage.data[i] = float64(start + i)
	}
	return t, nil
}
