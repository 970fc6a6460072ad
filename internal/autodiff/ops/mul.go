package ops

import "github.com/born-ml/minitorch/internal/tensor"

// MulOp represents an element-wise multiplication operation: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (MulOp) Name() string { return "Mul" }

// Forward implements autodiff.Function.
func (op MulOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	a, b := in[0], in[1]
	if !ctx.NoGrad() {
		ctx.SaveForBackward(a, b)
	}
	return op.Backend.Zip(a, b, mul)
}

// Backward implements autodiff.Function.
func (op MulOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, err := saved2(ctx)
	if err != nil {
		return nil, err
	}
	gradA, err := op.Backend.Zip(grad, b, mul)
	if err != nil {
		return nil, err
	}
	gradB, err := op.Backend.Zip(grad, a, mul)
	if err != nil {
		return nil, err
	}
	return broadcastBinary(gradA, gradB, a.Shape(), b.Shape(), op.Backend)
}
