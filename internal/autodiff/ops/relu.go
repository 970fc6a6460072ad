package ops

import "github.com/born-ml/minitorch/internal/tensor"

// ReLUOp represents the rectified linear unit: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//   - grad_x = outputGrad * (x > 0)
type ReLUOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (ReLUOp) Name() string { return "ReLU" }

// Forward implements autodiff.Function.
func (op ReLUOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	if !ctx.NoGrad() {
		ctx.SaveForBackward(in[0])
	}
	return op.Backend.Map(in[0], func(x float64) float64 { return max(x, 0) }), nil
}

// Backward implements autodiff.Function.
func (op ReLUOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	x, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	g, err := op.Backend.Zip(grad, x, func(g, x float64) float64 {
		if x > 0 {
			return g
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}
