package cpu

import (
	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N)
//
// Operands are read through their strides, so a transposed view is
// multiplied without first being made contiguous. Rows of the result are
// independent and are distributed across workers under the Parallel strategy.
func (b *Backend) MatMul(x, y *tensor.Tensor) (*tensor.Tensor, error) {
	xShape, yShape := x.Shape(), y.Shape()
	if len(xShape) != 2 || len(yShape) != 2 {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "matmul: only 2D tensors supported, got %dD and %dD",
			len(xShape), len(yShape))
	}
	m, k := xShape[0], xShape[1]
	kAlt, n := yShape[0], yShape[1]
	if k != kAlt {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n)
	}

	out, err := tensor.Zeros(tensor.Shape{m, n})
	if err != nil {
		return nil, err
	}
	c := out.Storage().Data()
	xs, ys := x.Storage().Data(), y.Storage().Data()
	xStr, yStr := x.Strides(), y.Strides()
	xOff, yOff := x.Offset(), y.Offset()

	// C[i,j] = sum_k A[i,k] * B[k,j]
	parallel.ForRange(m, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				var acc float64
				for p := 0; p < k; p++ {
					acc += xs[xOff+i*xStr[0]+p*xStr[1]] * ys[yOff+p*yStr[0]+j*yStr[1]]
				}
				c[i*n+j] = acc
			}
		}
	}, b.exec)
	return out, nil
}
