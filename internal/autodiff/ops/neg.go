package ops

import "github.com/born-ml/minitorch/internal/tensor"

// NegOp represents element-wise negation: output = -x.
type NegOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (NegOp) Name() string { return "Neg" }

// Forward implements autodiff.Function.
func (op NegOp) Forward(_ *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	return op.Backend.Map(in[0], negate), nil
}

// Backward implements autodiff.Function.
func (op NegOp) Backward(_ *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	return []*tensor.Tensor{op.Backend.Map(grad, negate)}, nil
}
