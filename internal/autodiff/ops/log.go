package ops

import (
	"math"

	"github.com/born-ml/minitorch/internal/tensor"
)

// LogOp represents the natural logarithm: output = log(x).
//
// Backward pass:
//   - d(log(x))/dx = 1/x, so grad_x = outputGrad / x
type LogOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (LogOp) Name() string { return "Log" }

// Forward implements autodiff.Function.
func (op LogOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	if !ctx.NoGrad() {
		ctx.SaveForBackward(in[0])
	}
	return op.Backend.Map(in[0], math.Log), nil
}

// Backward implements autodiff.Function.
func (op LogOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	x, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	g, err := op.Backend.Zip(grad, x, func(g, x float64) float64 { return g / x })
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}
