package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
)

// SumDimOp represents a reduction sum operation along a dimension: output = sum(x, dim).
//
// Forward:
//
//	y = sum(x, dim, keepDim)
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// If KeepDim is false, grad_y is unsqueezed first to match broadcasting requirements.
type SumDimOp struct {
	Backend tensor.Backend
	Dim     int // negative counts from the last dimension
	KeepDim bool
}

// Name implements autodiff.Function.
func (SumDimOp) Name() string { return "SumDim" }

// Forward implements autodiff.Function.
func (op SumDimOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out, dim, err := sumDim(op.Backend, in[0], op.Dim, op.KeepDim)
	if err != nil {
		return nil, err
	}
	ctx.SaveAux(in[0].Shape(), dim)
	return out, nil
}

// Backward implements autodiff.Function.
func (op SumDimOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	g, err := unsumDim(ctx, grad, op.KeepDim)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}

// SumAllOp sums every element into a rank-0 tensor.
//
// Backward: every element contributed once, so grad_x = broadcast(grad_y, x.shape).
type SumAllOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (SumAllOp) Name() string { return "SumAll" }

// Forward implements autodiff.Function.
func (op SumAllOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	ctx.SaveAux(in[0].Shape())
	return op.Backend.SumAll(in[0]), nil
}

// Backward implements autodiff.Function.
func (op SumAllOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	shape, err := autodiff.AuxAs[tensor.Shape](ctx, 0)
	if err != nil {
		return nil, err
	}
	g, err := broadcastTo(grad, shape)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}

// sumDim reduces x along dim and returns the normalized dim.
func sumDim(backend tensor.Backend, x *tensor.Tensor, dim int, keepDim bool) (*tensor.Tensor, int, error) {
	out, err := backend.Reduce(x, dim)
	if err != nil {
		return nil, 0, err
	}
	if dim < 0 {
		dim += x.Rank()
	}
	if keepDim {
		return out, dim, nil
	}
	dropped, err := out.Index(dim, 0)
	out.Release()
	if err != nil {
		return nil, 0, err
	}
	return dropped, dim, nil
}

// unsumDim spreads the gradient of a dimension reduction back over the
// input shape saved by sumDim's caller.
func unsumDim(ctx *Ctx, grad *tensor.Tensor, keepDim bool) (*tensor.Tensor, error) {
	shape, err := autodiff.AuxAs[tensor.Shape](ctx, 0)
	if err != nil {
		return nil, err
	}
	dim, err := autodiff.AuxAs[int](ctx, 1)
	if err != nil {
		return nil, err
	}
	if keepDim {
		return broadcastTo(grad, shape)
	}
	unsqueezed, err := grad.Unsqueeze(dim)
	if err != nil {
		return nil, err
	}
	defer unsqueezed.Release()
	return broadcastTo(unsqueezed, shape)
}
