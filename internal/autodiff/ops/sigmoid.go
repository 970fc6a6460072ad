package ops

import (
	"math"

	"github.com/born-ml/minitorch/internal/tensor"
)

// SigmoidOp represents the sigmoid activation: output = 1 / (1 + exp(-x)).
//
// Backward pass:
//   - d(σ(x))/dx = σ(x) * (1 - σ(x)), so grad_x = outputGrad * output * (1 - output)
type SigmoidOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (SigmoidOp) Name() string { return "Sigmoid" }

// Forward implements autodiff.Function.
func (op SigmoidOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out := op.Backend.Map(in[0], sigmoid)
	if !ctx.NoGrad() {
		ctx.SaveForBackward(out)
	}
	return out, nil
}

// Backward implements autodiff.Function.
func (op SigmoidOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	out, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	g, err := op.Backend.Zip(grad, out, func(g, s float64) float64 { return g * s * (1 - s) })
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}

// sigmoid avoids overflow of exp for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
