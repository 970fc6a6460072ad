package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
)

// MeanDimOp computes the mean along a dimension: output = sum(x, dim) / x.shape[dim].
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape) / x.shape[dim]
type MeanDimOp struct {
	Backend tensor.Backend
	Dim     int
	KeepDim bool
}

// Name implements autodiff.Function.
func (MeanDimOp) Name() string { return "MeanDim" }

// Forward implements autodiff.Function.
func (op MeanDimOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	sum, dim, err := sumDim(op.Backend, in[0], op.Dim, op.KeepDim)
	if err != nil {
		return nil, err
	}
	ctx.SaveAux(in[0].Shape(), dim)
	n := float64(in[0].Shape()[dim])
	return op.Backend.Map(sum, func(s float64) float64 { return s / n }), nil
}

// Backward implements autodiff.Function.
func (op MeanDimOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	g, err := unsumDim(ctx, grad, op.KeepDim)
	if err != nil {
		return nil, err
	}
	dim, err := autodiff.AuxAs[int](ctx, 1)
	if err != nil {
		return nil, err
	}
	n := float64(g.Shape()[dim])
	return []*tensor.Tensor{op.Backend.Map(g, func(x float64) float64 { return x / n })}, nil
}
