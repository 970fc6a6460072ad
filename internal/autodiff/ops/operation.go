// Package ops defines the differentiable tensor operations.
//
// Each operation implements autodiff.Function[*tensor.Tensor]:
//   - Forward pass: computed by a tensor.Backend (sequential or parallel kernels)
//   - Backward pass: computes gradients for inputs given the output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp, DivOp: element-wise with broadcasting; gradients are
//     summed over broadcast axes back to each input's shape
//   - NegOp, ExpOp, LogOp, SigmoidOp, ReLUOp: element-wise unary
//   - SumDimOp, SumAllOp, MeanDimOp: reductions
//   - ReshapeOp, PermuteOp, ExpandOp, ContiguousOp: views (zero-copy where the layout allows)
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//
// Ops bundles an engine and a backend and offers one method per operation:
//
//	o := ops.New(cpu.New())
//	w := o.Leaf(weights, true)
//	y, err := o.MatMul(x, w)
//	loss, err := o.SumAll(y)
//	err = o.Backward(loss)
package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// Var is a tensor graph node.
type Var = autodiff.Value[*tensor.Tensor]

// Ctx is the Context type of tensor operations.
type Ctx = autodiff.Context[*tensor.Tensor]

// Algebra implements autodiff.Algebra for tensors on a backend.
type Algebra struct {
	Backend tensor.Backend
}

// Add implements autodiff.Algebra. Both operands must have the same shape:
// gradients are never broadcast.
func (a Algebra) Add(x, y *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.Compatible(x, y); err != nil {
		return nil, err
	}
	return a.Backend.Zip(x, y, add)
}

// Compatible implements autodiff.Algebra: the shapes must be equal.
func (Algebra) Compatible(v, grad *tensor.Tensor) error {
	if !v.Shape().Equal(grad.Shape()) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "gradient shape %v for value of shape %v", grad.Shape(), v.Shape())
	}
	return nil
}

// OnesLike implements autodiff.Algebra.
func (Algebra) OnesLike(t *tensor.Tensor) *tensor.Tensor {
	return tensor.OnesLike(t)
}

// Axpy returns alpha*x + y, used by optimizers. x and y must have the same shape.
func (a Algebra) Axpy(alpha float64, x, y *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.Compatible(y, x); err != nil {
		return nil, err
	}
	return a.Backend.Zip(x, y, func(x, y float64) float64 { return alpha*x + y })
}

// Zip combines two tensors of equal shape element by element, used by
// optimizers that keep per-element state.
func (a Algebra) Zip(x, y *tensor.Tensor, fn func(x, y float64) float64) (*tensor.Tensor, error) {
	if err := a.Compatible(x, y); err != nil {
		return nil, err
	}
	return a.Backend.Zip(x, y, fn)
}

// Ops applies tensor operations on one engine and backend.
type Ops struct {
	engine  *autodiff.Engine[*tensor.Tensor]
	backend tensor.Backend
}

// New creates Ops computing on backend.
func New(backend tensor.Backend, opts ...autodiff.Option) *Ops {
	return &Ops{
		engine:  autodiff.NewEngine[*tensor.Tensor](Algebra{Backend: backend}, opts...),
		backend: backend,
	}
}

// Engine returns the underlying engine.
func (o *Ops) Engine() *autodiff.Engine[*tensor.Tensor] {
	return o.engine
}

// Backend returns the kernel backend.
func (o *Ops) Backend() tensor.Backend {
	return o.backend
}

// Leaf wraps t as a leaf Value.
func (o *Ops) Leaf(t *tensor.Tensor, requiresGrad bool) *Var {
	return o.engine.Leaf(t, requiresGrad)
}

// Constant wraps t as a leaf that never receives gradients.
func (o *Ops) Constant(t *tensor.Tensor) *Var {
	return o.engine.Constant(t)
}

// Backward back-propagates from root seeded with ones.
func (o *Ops) Backward(root *Var) error {
	return o.engine.Backward(root)
}

// BackwardWithSeed back-propagates from root with an explicit seed.
func (o *Ops) BackwardWithSeed(root *Var, seed *tensor.Tensor) error {
	return o.engine.BackwardWithSeed(root, seed)
}

// Add returns a + b.
func (o *Ops) Add(a, b *Var) (*Var, error) { return o.engine.Apply(AddOp{o.backend}, a, b) }

// Sub returns a - b.
func (o *Ops) Sub(a, b *Var) (*Var, error) { return o.engine.Apply(SubOp{o.backend}, a, b) }

// Mul returns a * b element-wise.
func (o *Ops) Mul(a, b *Var) (*Var, error) { return o.engine.Apply(MulOp{o.backend}, a, b) }

// Div returns a / b element-wise.
func (o *Ops) Div(a, b *Var) (*Var, error) { return o.engine.Apply(DivOp{o.backend}, a, b) }

// Neg returns -x.
func (o *Ops) Neg(x *Var) (*Var, error) { return o.engine.Apply(NegOp{o.backend}, x) }

// Exp returns e^x.
func (o *Ops) Exp(x *Var) (*Var, error) { return o.engine.Apply(ExpOp{o.backend}, x) }

// Log returns ln(x).
func (o *Ops) Log(x *Var) (*Var, error) { return o.engine.Apply(LogOp{o.backend}, x) }

// Sigmoid returns 1/(1+e^-x).
func (o *Ops) Sigmoid(x *Var) (*Var, error) { return o.engine.Apply(SigmoidOp{o.backend}, x) }

// ReLU returns max(0, x).
func (o *Ops) ReLU(x *Var) (*Var, error) { return o.engine.Apply(ReLUOp{o.backend}, x) }

// Sum sums along dim, keeping it with size 1 when keepDim is set.
func (o *Ops) Sum(x *Var, dim int, keepDim bool) (*Var, error) {
	return o.engine.Apply(SumDimOp{Backend: o.backend, Dim: dim, KeepDim: keepDim}, x)
}

// SumAll sums every element into a rank-0 tensor.
func (o *Ops) SumAll(x *Var) (*Var, error) { return o.engine.Apply(SumAllOp{o.backend}, x) }

// Mean averages along dim, keeping it with size 1 when keepDim is set.
func (o *Ops) Mean(x *Var, dim int, keepDim bool) (*Var, error) {
	return o.engine.Apply(MeanDimOp{Backend: o.backend, Dim: dim, KeepDim: keepDim}, x)
}

// Reshape returns x with a new shape; a view when x is contiguous.
func (o *Ops) Reshape(x *Var, shape ...int) (*Var, error) {
	return o.engine.Apply(ReshapeOp{Shape: shape}, x)
}

// Permute reorders dimensions without moving data.
func (o *Ops) Permute(x *Var, order ...int) (*Var, error) {
	return o.engine.Apply(PermuteOp{Order: order}, x)
}

// Transpose swaps two dimensions without moving data.
func (o *Ops) Transpose(x *Var, dim0, dim1 int) (*Var, error) {
	rank := x.Data().Rank()
	order := make([]int, rank)
	for i := range order {
		order[i] = i
	}
	d0, d1 := dim0, dim1
	if d0 < 0 {
		d0 += rank
	}
	if d1 < 0 {
		d1 += rank
	}
	if d0 < 0 || d0 >= rank || d1 < 0 || d1 >= rank {
		return nil, errors.Wrapf(tensor.ErrIndexOutOfRange, "transpose: dimensions (%d, %d) out of range for rank %d",
			dim0, dim1, rank)
	}
	order[d0], order[d1] = order[d1], order[d0]
	return o.Permute(x, order...)
}

// Expand broadcasts x to shape without copying.
func (o *Ops) Expand(x *Var, shape ...int) (*Var, error) {
	return o.engine.Apply(ExpandOp{Backend: o.backend, Shape: shape}, x)
}

// Contiguous returns x laid out row-major, copying only when needed.
func (o *Ops) Contiguous(x *Var) (*Var, error) { return o.engine.Apply(ContiguousOp{}, x) }

// MatMul returns the matrix product of two 2D tensors.
func (o *Ops) MatMul(a, b *Var) (*Var, error) { return o.engine.Apply(MatMulOp{o.backend}, a, b) }
