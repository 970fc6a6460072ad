package ops

import "github.com/born-ml/minitorch/internal/tensor"

// PermuteOp reorders dimensions: output = permute(x, Order...).
//
// Forward only permutes shape and strides, so the output shares x's storage.
//
// Backward: the inverse permutation applied to the gradient.
//
//	x: [2, 3, 4], Order (2, 0, 1) -> y: [4, 2, 3]
//	grad_y: [4, 2, 3] permuted by (1, 2, 0) -> grad_x: [2, 3, 4]
type PermuteOp struct {
	Order []int
}

// Name implements autodiff.Function.
func (PermuteOp) Name() string { return "Permute" }

// Forward implements autodiff.Function.
func (op PermuteOp) Forward(_ *Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	return in[0].Permute(op.Order...)
}

// Backward implements autodiff.Function.
func (op PermuteOp) Backward(_ *Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	order := make([]int, len(op.Order))
	for i, axis := range op.Order {
		if axis < 0 {
			axis += len(op.Order)
		}
		order[i] = axis
	}
	g, err := grad.Permute(tensor.InversePermutation(order)...)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{g}, nil
}
