package ops

import (
	"github.com/born-ml/minitorch/internal/tensor"
)

func add(a, b float64) float64 { return a + b }
func mul(a, b float64) float64 { return a * b }

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
//
//	Forward: a[4] + b[3,4] -> c[3,4]    (a was padded with a leading dim)
//	Backward: grad_c[3,4] -> grad_a[4]   (sum along dim 0, then reshape)
func reduceBroadcast(grad *tensor.Tensor, target tensor.Shape, backend tensor.Backend) (*tensor.Tensor, error) {
	if grad.Shape().Equal(target) {
		return grad, nil
	}
	if len(target) == 0 {
		return backend.SumAll(grad), nil
	}

	result := grad
	for _, axis := range tensor.BroadcastAxes(target, grad.Shape()) {
		reduced, err := backend.Reduce(result, axis)
		if err != nil {
			return nil, err
		}
		if result != grad {
			result.Release()
		}
		result = reduced
	}
	// Reduce keeps the summed axes with size 1; drop the padded leading ones.
	out, _, err := result.Reshape(target)
	if result != grad {
		result.Release()
	}
	return out, err
}

// broadcastTo spreads grad (with size-1 dims where the input was reduced)
// back over shape, materialized row-major.
func broadcastTo(grad *tensor.Tensor, shape tensor.Shape) (*tensor.Tensor, error) {
	expanded, err := grad.Expand(shape)
	if err != nil {
		return nil, err
	}
	out, _ := expanded.Contiguous()
	expanded.Release()
	return out, nil
}

// saved2 unpacks the two tensors saved by a binary forward.
func saved2(ctx *Ctx) (*tensor.Tensor, *tensor.Tensor, error) {
	a, err := ctx.Saved(0)
	if err != nil {
		return nil, nil, err
	}
	b, err := ctx.Saved(1)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// broadcastBinary reduces the two gradients of a broadcasting binary
// operation to the shapes of its inputs.
func broadcastBinary(gradA, gradB *tensor.Tensor, a, b tensor.Shape, backend tensor.Backend) ([]*tensor.Tensor, error) {
	ga, err := reduceBroadcast(gradA, a, backend)
	if err != nil {
		return nil, err
	}
	gb, err := reduceBroadcast(gradB, b, backend)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{ga, gb}, nil
}
