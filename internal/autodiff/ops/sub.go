package ops

import "github.com/born-ml/minitorch/internal/tensor"

// SubOp represents an element-wise subtraction operation: output = a - b.
//
// Backward pass:
//   - d(a-b)/da = 1, so grad_a = outputGrad
//   - d(a-b)/db = -1, so grad_b = -outputGrad
type SubOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (SubOp) Name() string { return "Sub" }

// Forward implements autodiff.Function.
func (op SubOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	ctx.SaveAux(in[0].Shape(), in[1].Shape())
	return op.Backend.Zip(in[0], in[1], func(a, b float64) float64 { return a - b })
}

// Backward implements autodiff.Function.
func (op SubOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, err := auxShapes(ctx)
	if err != nil {
		return nil, err
	}
	return broadcastBinary(grad, op.Backend.Map(grad, negate), a, b, op.Backend)
}

func negate(x float64) float64 { return -x }
