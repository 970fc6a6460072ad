// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scalar differentiates graphs of float64 values.
//
// Example:
//
//	x := scalar.New(2)
//	y := scalar.Mul(x, scalar.Add(x, scalar.Constant(1)))
//	_ = scalar.Backward(y)
//	d, _ := x.Derivative() // 5
package scalar

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/autodiff/scalar"
)

// Value is a float64 graph node.
type Value = scalar.Value

// Algebra is the float64 algebra used by the shared engine.
type Algebra = scalar.Algebra

// Engine returns the engine shared by the package-level operations.
func Engine() *autodiff.Engine[float64] { return scalar.Engine() }

// New creates a leaf that requires grad.
func New(x float64) *Value { return scalar.New(x) }

// Constant creates a leaf that never receives a derivative.
func Constant(x float64) *Value { return scalar.Constant(x) }

// Add returns a + b.
func Add(a, b *Value) *Value { return scalar.Add(a, b) }

// Sub returns a - b.
func Sub(a, b *Value) *Value { return scalar.Sub(a, b) }

// Mul returns a * b.
func Mul(a, b *Value) *Value { return scalar.Mul(a, b) }

// Div returns a / b.
func Div(a, b *Value) *Value { return scalar.Div(a, b) }

// Neg returns -x.
func Neg(x *Value) *Value { return scalar.Neg(x) }

// Inv returns 1 / x.
func Inv(x *Value) *Value { return scalar.Inv(x) }

// Log returns ln(x).
func Log(x *Value) *Value { return scalar.Log(x) }

// Exp returns e^x.
func Exp(x *Value) *Value { return scalar.Exp(x) }

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x *Value) *Value { return scalar.Sigmoid(x) }

// ReLU returns max(x, 0).
func ReLU(x *Value) *Value { return scalar.ReLU(x) }

// LT returns 1 if a < b, else 0.
func LT(a, b *Value) *Value { return scalar.LT(a, b) }

// EQ returns 1 if a == b, else 0.
func EQ(a, b *Value) *Value { return scalar.EQ(a, b) }

// Sum adds values left to right.
func Sum(values ...*Value) *Value { return scalar.Sum(values...) }

// Backward back-propagates from root with seed 1.
func Backward(root *Value) error { return scalar.Backward(root) }

// BackwardWithSeed back-propagates from root with an explicit seed.
func BackwardWithSeed(root *Value, seed float64) error {
	return scalar.BackwardWithSeed(root, seed)
}
