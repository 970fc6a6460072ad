package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
)

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// Note: If broadcasting was used in forward pass, gradients are
// reduced (summed) along the broadcast dimensions to match input shapes.
type AddOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (AddOp) Name() string { return "Add" }

// Forward implements autodiff.Function.
func (op AddOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	ctx.SaveAux(in[0].Shape(), in[1].Shape())
	return op.Backend.Zip(in[0], in[1], add)
}

// Backward implements autodiff.Function.
func (op AddOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, err := auxShapes(ctx)
	if err != nil {
		return nil, err
	}
	return broadcastBinary(grad, grad, a, b, op.Backend)
}

// auxShapes returns the two input shapes saved by a binary forward.
func auxShapes(ctx *Ctx) (tensor.Shape, tensor.Shape, error) {
	a, err := autodiff.AuxAs[tensor.Shape](ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	b, err := autodiff.AuxAs[tensor.Shape](ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
