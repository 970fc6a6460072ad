package ops

import "github.com/born-ml/minitorch/internal/tensor"

// DivOp represents an element-wise division operation: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b, so grad_a = outputGrad / b
//   - d(a/b)/db = -a/b², so grad_b = -outputGrad * a / b²
type DivOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (DivOp) Name() string { return "Div" }

// Forward implements autodiff.Function.
func (op DivOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	a, b := in[0], in[1]
	if !ctx.NoGrad() {
		ctx.SaveForBackward(a, b)
	}
	return op.Backend.Zip(a, b, func(a, b float64) float64 { return a / b })
}

// Backward implements autodiff.Function.
func (op DivOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, err := saved2(ctx)
	if err != nil {
		return nil, err
	}
	gradA, err := op.Backend.Zip(grad, b, func(g, b float64) float64 { return g / b })
	if err != nil {
		return nil, err
	}
	// gradA already holds g/b, so grad_b = -gradA * a / b.
	ga, err := op.Backend.Zip(gradA, a, mul)
	if err != nil {
		return nil, err
	}
	gradB, err := op.Backend.Zip(ga, b, func(p, b float64) float64 { return -p / b })
	if err != nil {
		return nil, err
	}
	return broadcastBinary(gradA, gradB, a.Shape(), b.Shape(), op.Backend)
}
