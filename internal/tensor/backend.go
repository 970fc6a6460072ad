package tensor

// UnaryFn is an element-wise function applied by Backend.Map.
type UnaryFn func(x float64) float64

// BinaryFn is an element-wise function applied by Backend.Zip.
type BinaryFn func(a, b float64) float64

// Backend defines the numeric kernels tensor operations are built from.
// Backends decide how a kernel executes (sequentially, on a worker pool, ...);
// callers, including the autodiff engine, only see the results.
//
// Implementations:
//   - cpu.Backend: pure Go, sequential or data-parallel per Config.Strategy
type Backend interface {
	// Map applies fn to every element and returns a contiguous result of the same shape.
	Map(x *Tensor, fn UnaryFn) *Tensor

	// Zip applies fn element-wise after broadcasting a and b to a common shape.
	// Broadcast inputs are read through stride-0 views, never copied.
	Zip(a, b *Tensor, fn BinaryFn) (*Tensor, error)

	// Reduce sums along dim, keeping it with size 1.
	Reduce(x *Tensor, dim int) (*Tensor, error)

	// SumAll sums all elements into a rank-0 tensor.
	SumAll(x *Tensor) *Tensor

	// MatMul multiplies [M, K] by [K, N].
	MatMul(a, b *Tensor) (*Tensor, error)

	// Name returns the backend name for logs.
	Name() string
}
