package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
)

// ExpandOp broadcasts x to Shape without copying: expanded dimensions get
// stride 0 in the output view.
//
// Backward: the gradient is summed over the expanded dimensions, exactly as
// for an implicitly broadcast operand.
type ExpandOp struct {
	Backend tensor.Backend
	Shape   tensor.Shape
}

// Name implements autodiff.Function.
func (ExpandOp) Name() string { return "Expand" }

// Forward implements autodiff.Function.
func (op ExpandOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out, err := in[0].Expand(op.Shape)
	if err != nil {
		return nil, err
	}
	ctx.SaveAux(in[0].Shape())
	return out, nil
}

// Backward implements autodiff.Function.
func (op ExpandOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	shape, err := autodiff.AuxAs[tensor.Shape](ctx, 0)
	if err != nil {
		return nil, err
	}
	g, err := reduceBroadcast(grad, shape, op.Backend)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}
