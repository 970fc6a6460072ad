package cpu

import (
	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// Reduce sums x along dim, keeping the reduced dimension with size 1.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	x: shape [2, 3, 4]
//	backend.Reduce(x, -1) // shape [2, 3, 1]
//
// Each output element is summed sequentially along dim, so parallel execution
// over output elements gives the same result as sequential execution.
func (b *Backend) Reduce(x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		return nil, errors.Wrapf(tensor.ErrIndexOutOfRange, "reduce: dimension %d out of range for %dD tensor", dim, ndim)
	}

	outShape := shape.Clone()
	outShape[dim] = 1
	out, err := tensor.Zeros(outShape)
	if err != nil {
		return nil, err
	}
	dst := out.Storage().Data()
	src := x.Storage().Data()
	strides, off := x.Strides(), x.Offset()
	size, step := shape[dim], strides[dim]

	parallel.ForRange(len(dst), func(start, end int) {
		idx := make([]int, ndim)
		for i := start; i < end; i++ {
			tensor.UnravelIndex(i, outShape, idx)
			pos := tensor.PositionOf(idx, strides, off)
			var acc float64
			for k := 0; k < size; k++ {
				acc += src[pos+k*step]
			}
			dst[i] = acc
		}
	}, b.exec)
	return out, nil
}

// SumAll sums every element of x into a rank-0 tensor.
func (b *Backend) SumAll(x *tensor.Tensor) *tensor.Tensor {
	src := x.Storage().Data()
	if x.IsContiguous() {
		off := x.Offset()
		return tensor.Scalar(parallel.Reduce(x.NumElements(), func(i int) float64 {
			return src[off+i]
		}, b.exec))
	}
	shape, strides, off := x.Shape(), x.Strides(), x.Offset()
	return tensor.Scalar(parallel.Reduce(x.NumElements(), func(i int) float64 {
		idx := make([]int, len(shape))
		tensor.UnravelIndex(i, shape, idx)
		return src[tensor.PositionOf(idx, strides, off)]
	}, b.exec))
}
