package cpu

import (
	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/internal/tensor"
)

// sameLayout reports whether x and y are both contiguous with exactly the
// output shape, so the flat buffers can be zipped without index arithmetic.
func sameLayout(x, y *tensor.Tensor, outShape tensor.Shape) bool {
	return x.Shape().Equal(outShape) && y.Shape().Equal(outShape) &&
		x.IsContiguous() && y.IsContiguous()
}

// zipContiguous is the fast path of Zip for equally shaped contiguous inputs.
func zipContiguous(dst []float64, x, y *tensor.Tensor, fn tensor.BinaryFn, cfg parallel.Config) {
	xs, ys := x.Storage().Data(), y.Storage().Data()
	xOff, yOff := x.Offset(), y.Offset()
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = fn(xs[xOff+i], ys[yOff+i])
		}
	}, cfg)
}
