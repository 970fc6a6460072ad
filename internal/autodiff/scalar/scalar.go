// Package scalar provides float64 autodiff: the payload algebra, the scalar
// Functions and a builder API returning graph-tracked Values from every
// arithmetic call.
//
// Example:
//
//	x := scalar.New(2)
//	y := scalar.Add(scalar.Mul(x, x), x) // y = x² + x
//	if err := scalar.Backward(y); err != nil { ... }
//	dx, _ := x.Derivative() // 2x + 1 = 5
package scalar

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/janpfeifer/must"
)

// Value is a scalar graph node.
type Value = autodiff.Value[float64]

// Algebra implements autodiff.Algebra for float64 payloads.
type Algebra struct{}

// Add implements autodiff.Algebra.
func (Algebra) Add(a, b float64) (float64, error) {
	return a + b, nil
}

// OnesLike implements autodiff.Algebra.
func (Algebra) OnesLike(float64) float64 {
	return 1
}

// Compatible implements autodiff.Algebra: any two scalars are.
func (Algebra) Compatible(float64, float64) error {
	return nil
}

// Axpy returns alpha*x + y, used by optimizers.
func (Algebra) Axpy(alpha, x, y float64) (float64, error) {
	return alpha*x + y, nil
}

// Zip returns fn(x, y).
func (Algebra) Zip(x, y float64, fn func(x, y float64) float64) (float64, error) {
	return fn(x, y), nil
}

// engine is shared by the builder functions below. Like every Engine it is
// not safe for concurrent graph construction.
var engine = autodiff.NewEngine[float64](Algebra{})

// Engine returns the engine used by the builder functions.
func Engine() *autodiff.Engine[float64] {
	return engine
}

// New creates a leaf that requires grad.
func New(x float64) *Value {
	return engine.Leaf(x, true)
}

// Constant creates a leaf that never receives gradients.
func Constant(x float64) *Value {
	return engine.Constant(x)
}

// apply runs a scalar Function. Scalar forwards never fail for non-nil
// inputs, so errors are programming errors and panic.
func apply(fn autodiff.Function[float64], inputs ...*Value) *Value {
	return must.M1(engine.Apply(fn, inputs...))
}

// Add returns a + b.
func Add(a, b *Value) *Value { return apply(AddFn{}, a, b) }

// Sub returns a - b.
func Sub(a, b *Value) *Value { return apply(SubFn{}, a, b) }

// Mul returns a * b.
func Mul(a, b *Value) *Value { return apply(MulFn{}, a, b) }

// Div returns a / b.
func Div(a, b *Value) *Value { return apply(DivFn{}, a, b) }

// Neg returns -x.
func Neg(x *Value) *Value { return apply(NegFn{}, x) }

// Inv returns 1/x.
func Inv(x *Value) *Value { return apply(InvFn{}, x) }

// Log returns ln(x).
func Log(x *Value) *Value { return apply(LogFn{}, x) }

// Exp returns e^x.
func Exp(x *Value) *Value { return apply(ExpFn{}, x) }

// Sigmoid returns 1/(1+e^-x).
func Sigmoid(x *Value) *Value { return apply(SigmoidFn{}, x) }

// ReLU returns max(0, x).
func ReLU(x *Value) *Value { return apply(ReLUFn{}, x) }

// LT returns 1 if a < b else 0.
func LT(a, b *Value) *Value { return apply(LTFn{}, a, b) }

// EQ returns 1 if a == b else 0.
func EQ(a, b *Value) *Value { return apply(EQFn{}, a, b) }

// Sum adds all values; Sum() is the constant 0.
func Sum(values ...*Value) *Value {
	if len(values) == 0 {
		return Constant(0)
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = Add(acc, v)
	}
	return acc
}

// Backward back-propagates from root with seed 1.
func Backward(root *Value) error {
	return engine.Backward(root)
}

// BackwardWithSeed back-propagates from root with an explicit seed.
func BackwardWithSeed(root *Value, seed float64) error {
	return engine.BackwardWithSeed(root, seed)
}
