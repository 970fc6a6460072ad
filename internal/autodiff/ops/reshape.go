package ops

import (
	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/tensor"
)

// ReshapeOp represents a reshape operation: output = reshape(x, Shape).
//
// The output is a view sharing x's storage when x is contiguous, otherwise a
// copy. One dimension may be -1 and is inferred.
//
// Backward: grad_x = reshape(grad_output, x.shape).
type ReshapeOp struct {
	Shape tensor.Shape
}

// Name implements autodiff.Function.
func (ReshapeOp) Name() string { return "Reshape" }

// Forward implements autodiff.Function.
func (op ReshapeOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out, _, err := in[0].Reshape(op.Shape)
	if err != nil {
		return nil, err
	}
	ctx.SaveAux(in[0].Shape())
	return out, nil
}

// Backward implements autodiff.Function.
func (ReshapeOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	shape, err := autodiff.AuxAs[tensor.Shape](ctx, 0)
	if err != nil {
		return nil, err
	}
	g, _, err := grad.Reshape(shape)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}

// ContiguousOp returns its input laid out row-major, copying only when the
// input is not already contiguous. Its gradient is the identity.
type ContiguousOp struct{}

// Name implements autodiff.Function.
func (ContiguousOp) Name() string { return "Contiguous" }

// Forward implements autodiff.Function.
func (ContiguousOp) Forward(_ *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out, _ := in[0].Contiguous()
	return out, nil
}

// Backward implements autodiff.Function.
func (ContiguousOp) Backward(_ *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	return []*tensor.Tensor{grad}, nil
}
