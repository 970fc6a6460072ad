package ops

import (
	"math"

	"github.com/born-ml/minitorch/internal/tensor"
)

// ExpOp represents the exponential function: output = exp(x).
//
// Backward pass:
//   - d(exp(x))/dx = exp(x), so grad_x = outputGrad * output
//
// The output is saved instead of the input.
type ExpOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (ExpOp) Name() string { return "Exp" }

// Forward implements autodiff.Function.
func (op ExpOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out := op.Backend.Map(in[0], math.Exp)
	if !ctx.NoGrad() {
		ctx.SaveForBackward(out)
	}
	return out, nil
}

// Backward implements autodiff.Function.
func (op ExpOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	out, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	g, err := op.Backend.Zip(grad, out, mul)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}
