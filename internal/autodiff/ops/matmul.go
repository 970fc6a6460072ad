package ops

import "github.com/born-ml/minitorch/internal/tensor"

// MatMulOp represents a matrix multiplication operation: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
//
// Where @ denotes matrix multiplication and ^T denotes transpose. The
// transposes are stride views; the backend reads them without copying.
type MatMulOp struct {
	Backend tensor.Backend
}

// Name implements autodiff.Function.
func (MatMulOp) Name() string { return "MatMul" }

// Forward implements autodiff.Function.
func (op MatMulOp) Forward(ctx *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	out, err := op.Backend.MatMul(in[0], in[1])
	if err != nil {
		return nil, err
	}
	if !ctx.NoGrad() {
		ctx.SaveForBackward(in[0], in[1])
	}
	return out, nil
}

// Backward implements autodiff.Function.
func (op MatMulOp) Backward(ctx *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, err := saved2(ctx)
	if err != nil {
		return nil, err
	}

	// grad_a = outputGrad @ b^T
	bT, err := b.Transpose(0, 1)
	if err != nil {
		return nil, err
	}
	gradA, err := op.Backend.MatMul(grad, bT)
	bT.Release()
	if err != nil {
		return nil, err
	}

	// grad_b = a^T @ outputGrad
	aT, err := a.Transpose(0, 1)
	if err != nil {
		return nil, err
	}
	gradB, err := op.Backend.MatMul(aT, grad)
	aT.Release()
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{gradA, gradB}, nil
}
