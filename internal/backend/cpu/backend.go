// Package cpu implements the CPU backend: pure Go kernels over strided tensors.
//
// Every kernel reads its inputs through their (shape, strides, offset)
// descriptors, so transposed, sliced and broadcast (stride 0) views are
// consumed in place, and writes a fresh contiguous result.
package cpu

import (
	"fmt"

	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/internal/tensor"
	"k8s.io/klog/v2"
)

// Strategy selects how kernels iterate over elements.
type Strategy int

const (
	// Sequential runs every kernel in the calling goroutine.
	Sequential Strategy = iota
	// Parallel splits independent iterations across a worker pool.
	// Reductions combine per-chunk partials in a fixed order.
	Parallel
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Config controls the CPU backend.
type Config struct {
	Strategy Strategy
	Parallel parallel.Config // Used when Strategy == Parallel.
}

// DefaultConfig returns a parallel configuration sized from the environment.
func DefaultConfig() Config {
	return Config{
		Strategy: Parallel,
		Parallel: parallel.ConfigFromEnv(),
	}
}

// Backend implements tensor.Backend on the CPU.
type Backend struct {
	config Config
	exec   parallel.Config
}

// New creates a CPU backend with DefaultConfig.
func New() *Backend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit configuration.
func NewWithConfig(config Config) *Backend {
	exec := parallel.Config{Enabled: false}
	if config.Strategy == Parallel {
		exec = config.Parallel
	}
	klog.V(2).Infof("cpu: backend strategy=%s workers=%d", config.Strategy, exec.NumWorkers)
	return &Backend{config: config, exec: exec}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU(" + b.config.Strategy.String() + ")"
}

// Strategy returns the configured execution strategy.
func (b *Backend) Strategy() Strategy {
	return b.config.Strategy
}

// Map applies fn to every element of x.
func (b *Backend) Map(x *tensor.Tensor, fn tensor.UnaryFn) *tensor.Tensor {
	out := tensor.ZerosLike(x)
	dst := out.Storage().Data()
	src := x.Storage().Data()

	if x.IsContiguous() {
		off := x.Offset()
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = fn(src[off+i])
			}
		}, b.exec)
		return out
	}

	shape, strides, off := x.Shape(), x.Strides(), x.Offset()
	parallel.ForRange(len(dst), func(start, end int) {
		idx := make([]int, len(shape))
		for i := start; i < end; i++ {
			tensor.UnravelIndex(i, shape, idx)
			dst[i] = fn(src[tensor.PositionOf(idx, strides, off)])
		}
	}, b.exec)
	return out
}

// Zip applies fn element-wise with NumPy-style broadcasting.
func (b *Backend) Zip(x, y *tensor.Tensor, fn tensor.BinaryFn) (*tensor.Tensor, error) {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, err
	}
	xStrides, err := tensor.BroadcastStrides(x.Shape(), x.Strides(), outShape)
	if err != nil {
		return nil, err
	}
	yStrides, err := tensor.BroadcastStrides(y.Shape(), y.Strides(), outShape)
	if err != nil {
		return nil, err
	}

	out, err := tensor.Zeros(outShape)
	if err != nil {
		return nil, err
	}
	dst := out.Storage().Data()

	if sameLayout(x, y, outShape) {
		zipContiguous(dst, x, y, fn, b.exec)
		return out, nil
	}

	xs, ys := x.Storage().Data(), y.Storage().Data()
	xOff, yOff := x.Offset(), y.Offset()
	parallel.ForRange(len(dst), func(start, end int) {
		idx := make([]int, len(outShape))
		for i := start; i < end; i++ {
			tensor.UnravelIndex(i, outShape, idx)
			dst[i] = fn(xs[tensor.PositionOf(idx, xStrides, xOff)], ys[tensor.PositionOf(idx, yStrides, yOff)])
		}
	}, b.exec)
	return out, nil
}
