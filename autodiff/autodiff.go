// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// The engine is generic over the payload carried by each node: float64 for
// scalar graphs (see package scalar) or *tensor.Tensor for tensor graphs
// (see Ops). Each differentiable operation is a Function with a Forward and a
// Backward; Apply records its History and Backward runs the chain rule in
// reverse topological order.
//
// Example:
//
//	import (
//	    "github.com/born-ml/minitorch/autodiff"
//	    "github.com/born-ml/minitorch/backend/cpu"
//	    "github.com/born-ml/minitorch/tensor"
//	)
//
//	func main() {
//	    o := autodiff.NewTensorOps(cpu.New())
//	    x := o.Leaf(must.M1(tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})), true)
//	    y, _ := o.SumAll(must.M1(o.Mul(x, x)))
//	    _ = o.Backward(y)
//	    grad, _ := x.Derivative() // [2, 4, 6]
//	}
package autodiff

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/tensor"
)

// Engine applies Functions and back-propagates through the recorded graph.
type Engine[P any] = autodiff.Engine[P]

// Algebra supplies the payload arithmetic the engine needs.
type Algebra[P any] = autodiff.Algebra[P]

// Value is a node of the computation graph.
type Value[P any] = autodiff.Value[P]

// ID identifies a Value.
type ID = autodiff.ID

// Context carries values saved by Forward for Backward.
type Context[P any] = autodiff.Context[P]

// Function is a differentiable operation.
type Function[P any] = autodiff.Function[P]

// History records how a Value was produced.
type History[P any] = autodiff.History[P]

// Option configures an Engine.
type Option = autodiff.Option

// Errors. Use IsFatal to tell graph defects from caller mistakes.
var (
	ErrGraphConsistency  = autodiff.ErrGraphConsistency
	ErrGraphCycle        = autodiff.ErrGraphCycle
	ErrMissingContext    = autodiff.ErrMissingContext
	ErrArity             = autodiff.ErrArity
	ErrOperationPanic    = autodiff.ErrOperationPanic
	ErrNoGradient        = autodiff.ErrNoGradient
	ErrNotDifferentiable = autodiff.ErrNotDifferentiable
)

// NewEngine creates an engine over algebra.
func NewEngine[P any](algebra Algebra[P], opts ...Option) *Engine[P] {
	return autodiff.NewEngine(algebra, opts...)
}

// WithRetainGraph keeps saved contexts after Backward so the graph can be
// back-propagated again.
func WithRetainGraph(retain bool) Option {
	return autodiff.WithRetainGraph(retain)
}

// IsFatal reports whether err signals a broken graph or operation.
func IsFatal(err error) bool {
	return autodiff.IsFatal(err)
}

// TopologicalSort returns the non-constant nodes reachable from root,
// every consumer before its producers.
func TopologicalSort[P any](root *Value[P]) ([]*Value[P], error) {
	return autodiff.TopologicalSort(root)
}

// AuxAs returns the i-th auxiliary value of c as T.
func AuxAs[T, P any](c *Context[P], i int) (T, error) {
	return autodiff.AuxAs[T](c, i)
}

// Ops is the tensor operation set bound to an engine and a backend.
type Ops = ops.Ops

// Var is a tensor-valued graph node.
type Var = ops.Var

// TensorAlgebra implements Algebra for tensors on a backend.
type TensorAlgebra = ops.Algebra

// NewTensorOps creates the tensor operation set over backend.
//
// Example:
//
//	o := autodiff.NewTensorOps(cpu.New(), autodiff.WithRetainGraph(true))
func NewTensorOps(backend tensor.Backend, opts ...Option) *Ops {
	return ops.New(backend, opts...)
}
