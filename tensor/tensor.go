// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/minitorch/internal/tensor"
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Storage is the flat, reference-counted buffer shared by views.
type Storage = tensor.Storage

// Tensor is a strided view over a Storage.
type Tensor = tensor.Tensor

// ViewKind tells whether an operation returned a view or a copy.
type ViewKind = tensor.ViewKind

// View kinds.
const (
	Shared = tensor.Shared
	Copied = tensor.Copied
)

// Backend computes tensor kernels (see backend/cpu).
type Backend = tensor.Backend

// Errors.
var (
	ErrShapeMismatch   = tensor.ErrShapeMismatch
	ErrInvalidShape    = tensor.ErrInvalidShape
	ErrIndexOutOfRange = tensor.ErrIndexOutOfRange
	ErrInvalidView     = tensor.ErrInvalidView
)

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) (*Tensor, error) {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*Tensor, error) {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) (*Tensor, error) {
	return tensor.Full(shape, value)
}

// Scalar creates a rank-0 tensor.
func Scalar(v float64) *Tensor {
	return tensor.Scalar(v)
}

// FromSlice creates a tensor by copying data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromStorage creates a contiguous tensor over existing storage without copying.
func FromStorage(s *Storage, shape Shape) (*Tensor, error) {
	return tensor.FromStorage(s, shape)
}

// NewStorage allocates zeroed storage of n elements.
func NewStorage(n int) *Storage {
	return tensor.NewStorage(n)
}

// Randn creates a tensor with normally distributed values scaled by scale.
func Randn(shape Shape, scale float64, rng *rand.Rand) (*Tensor, error) {
	return tensor.Randn(shape, scale, rng)
}

// Arange creates the 1D tensor [start, start+1, ..., end-1].
func Arange(start, end int) (*Tensor, error) {
	return tensor.Arange(start, end)
}

// BroadcastShapes returns the NumPy-style broadcast of two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// OnesLike creates a contiguous tensor of ones shaped like t.
func OnesLike(t *Tensor) *Tensor {
	return tensor.OnesLike(t)
}

// ZerosLike creates a contiguous tensor of zeros shaped like t.
func ZerosLike(t *Tensor) *Tensor {
	return tensor.ZerosLike(t)
}
