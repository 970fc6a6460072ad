package ops_test

import (
	"fmt"
	"testing"

	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/internal/backend/cpu"
	"github.com/born-ml/minitorch/internal/parallel"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromSlice(data []float64, shape ...int) *tensor.Tensor {
	return must.M1(tensor.FromSlice(data, shape))
}

// TestBroadcastAddBackward tests the (3,1) + (1,4) round trip.
func TestBroadcastAddBackward(t *testing.T) {
	o := ops.New(cpu.New())
	a := o.Leaf(must.M1(tensor.Ones(tensor.Shape{3, 1})), true)
	b := o.Leaf(must.M1(tensor.Ones(tensor.Shape{1, 4})), true)

	c, err := o.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, c.Data().Shape())

	require.NoError(t, o.BackwardWithSeed(c, must.M1(tensor.Ones(tensor.Shape{3, 4}))))

	gradA := must.M1(a.Derivative())
	assert.Equal(t, tensor.Shape{3, 1}, gradA.Shape())
	assert.Equal(t, []float64{4, 4, 4}, gradA.ToSlice())

	gradB := must.M1(b.Derivative())
	assert.Equal(t, tensor.Shape{1, 4}, gradB.Shape())
	assert.Equal(t, []float64{3, 3, 3, 3}, gradB.ToSlice())
}

func TestAddShapeMismatch(t *testing.T) {
	o := ops.New(cpu.New())
	a := o.Leaf(must.M1(tensor.Zeros(tensor.Shape{3, 4})), true)
	b := o.Leaf(must.M1(tensor.Zeros(tensor.Shape{3, 5})), true)

	_, err := o.Add(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.False(t, autodiff.IsFatal(err))
}

func TestMatMulForwardBackward(t *testing.T) {
	o := ops.New(cpu.New())
	a := o.Leaf(fromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3), true)
	b := o.Leaf(fromSlice([]float64{7, 8, 9, 10, 11, 12}, 3, 2), true)

	c, err := o.MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Data().ToSlice())

	require.NoError(t, o.Backward(c))
	// grad_a = ones(2,2) @ b^T: row sums of b.
	assert.Equal(t, []float64{15, 19, 23, 15, 19, 23}, must.M1(a.Derivative()).ToSlice())
	// grad_b = a^T @ ones(2,2): column sums of a.
	assert.Equal(t, []float64{5, 5, 7, 7, 9, 9}, must.M1(b.Derivative()).ToSlice())
}

func TestViewsShareStorage(t *testing.T) {
	o := ops.New(cpu.New())
	x := o.Leaf(must.M1(tensor.Arange(0, 6)), true)

	r := must.M1(o.Reshape(x, 2, 3))
	assert.True(t, r.Data().SharesStorage(x.Data()), "reshape of a contiguous tensor is a view")

	tr := must.M1(o.Transpose(r, 0, 1))
	assert.True(t, tr.Data().SharesStorage(x.Data()), "transpose never copies")
	assert.Equal(t, tensor.Shape{3, 2}, tr.Data().Shape())
	assert.Equal(t, []int{1, 3}, tr.Data().Strides())
	assert.False(t, tr.Data().IsContiguous())

	flat := must.M1(o.Reshape(tr, 6))
	assert.False(t, flat.Data().SharesStorage(x.Data()), "reshape of a transposed view copies")
	assert.Equal(t, []float64{0, 3, 1, 4, 2, 5}, flat.Data().ToSlice())

	e := must.M1(o.Expand(must.M1(o.Reshape(x, 1, 6)), 4, 6))
	assert.True(t, e.Data().SharesStorage(x.Data()))
	assert.Equal(t, 0, e.Data().Strides()[0])

	// Gradients flow back through the chain of views.
	loss := must.M1(o.SumAll(must.M1(o.Mul(flat, flat))))
	require.NoError(t, o.Backward(loss))
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, must.M1(x.Derivative()).ToSlice())
}

func TestSumAndMeanShapes(t *testing.T) {
	o := ops.New(cpu.New())
	x := o.Leaf(must.M1(tensor.Arange(0, 6)), true)
	m := must.M1(o.Reshape(x, 2, 3))

	s := must.M1(o.Sum(m, 1, false))
	assert.Equal(t, tensor.Shape{2}, s.Data().Shape())
	assert.Equal(t, []float64{3, 12}, s.Data().ToSlice())

	k := must.M1(o.Sum(m, -2, true))
	assert.Equal(t, tensor.Shape{1, 3}, k.Data().Shape())
	assert.Equal(t, []float64{3, 5, 7}, k.Data().ToSlice())

	mean := must.M1(o.Mean(m, 1, false))
	assert.Equal(t, []float64{1, 4}, mean.Data().ToSlice())

	all := must.M1(o.SumAll(m))
	assert.Equal(t, 0, all.Data().Rank())
	assert.Equal(t, 15.0, all.Data().Item())

	_, err := o.Sum(m, 2, false)
	assert.ErrorIs(t, err, tensor.ErrIndexOutOfRange)
	_, err = o.Transpose(m, 0, 3)
	assert.ErrorIs(t, err, tensor.ErrIndexOutOfRange)
}

func TestConstantsDoNotRecordHistory(t *testing.T) {
	o := ops.New(cpu.New())
	a := o.Constant(must.M1(tensor.Ones(tensor.Shape{2})))
	b := o.Constant(must.M1(tensor.Ones(tensor.Shape{2})))
	c := must.M1(o.Mul(a, b))
	assert.True(t, c.IsLeaf())
	assert.True(t, c.IsConstant())
	assert.ErrorIs(t, o.Backward(c), autodiff.ErrNotDifferentiable)
}

func TestSecondBackwardNeedsRetainGraph(t *testing.T) {
	build := func(o *ops.Ops) (*ops.Var, *ops.Var) {
		x := o.Leaf(fromSlice([]float64{1, 2}, 2), true)
		return x, must.M1(o.SumAll(must.M1(o.Mul(x, x))))
	}

	o := ops.New(cpu.New())
	_, y := build(o)
	require.NoError(t, o.Backward(y))
	assert.ErrorIs(t, o.Backward(y), autodiff.ErrMissingContext)

	o = ops.New(cpu.New(), autodiff.WithRetainGraph(true))
	x, y := build(o)
	require.NoError(t, o.Backward(y))
	require.NoError(t, o.Backward(y))
	assert.Equal(t, []float64{4, 8}, must.M1(x.Derivative()).ToSlice())
}

func TestAlgebraAxpy(t *testing.T) {
	alg := ops.Algebra{Backend: cpu.New()}
	x := fromSlice([]float64{1, 2, 3}, 3)
	y := fromSlice([]float64{10, 20, 30}, 3)
	out := must.M1(alg.Axpy(-0.5, x, y))
	assert.Equal(t, []float64{9.5, 19, 28.5}, out.ToSlice())
	assert.Equal(t, []float64{1, 1, 1}, alg.OnesLike(x).ToSlice())
}

func parallelBackend() *cpu.Backend {
	return cpu.NewWithConfig(cpu.Config{
		Strategy: cpu.Parallel,
		Parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16},
	})
}

// failingMap panics inside a backend kernel, in forward or in backward.
type failingMap struct {
	backend  tensor.Backend
	value    any
	backward bool
}

func (failingMap) Name() string { return "FailingMap" }

func (f failingMap) Forward(_ *ops.Ctx, in ...*tensor.Tensor) (*tensor.Tensor, error) {
	if f.backward {
		return in[0].Clone(), nil
	}
	return f.backend.Map(in[0], func(float64) float64 { panic(f.value) }), nil
}

func (f failingMap) Backward(_ *ops.Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	return []*tensor.Tensor{f.backend.Map(grad, func(float64) float64 { panic(f.value) })}, nil
}

// TestKernelPanicBecomesError tests that a panic inside a kernel worker is
// reported by the engine under both strategies, whatever the panic value.
func TestKernelPanicBecomesError(t *testing.T) {
	for name, backend := range map[string]*cpu.Backend{
		"sequential": cpu.NewWithConfig(cpu.Config{Strategy: cpu.Sequential}),
		"parallel":   parallelBackend(),
	} {
		for _, value := range []any{errors.New("kernel failed"), "kernel failed"} {
			for _, backward := range []bool{false, true} {
				t.Run(fmt.Sprintf("%s/%T/backward=%v", name, value, backward), func(t *testing.T) {
					o := ops.New(backend)
					x := o.Leaf(must.M1(tensor.Zeros(tensor.Shape{1000})), true)
					fn := failingMap{backend: backend, value: value, backward: backward}

					y, err := o.Engine().Apply(fn, x)
					if backward {
						require.NoError(t, err)
						err = o.Backward(must.M1(o.SumAll(y)))
					}
					require.Error(t, err)
					assert.ErrorIs(t, err, autodiff.ErrOperationPanic)
					assert.Contains(t, err.Error(), "kernel failed")
					assert.True(t, autodiff.IsFatal(err))
				})
			}
		}
	}
}

func TestBackwardSeedShapeMismatch(t *testing.T) {
	o := ops.New(cpu.New())
	x := o.Leaf(must.M1(tensor.Ones(tensor.Shape{3})), true)
	y := must.M1(o.Neg(x))
	err := o.BackwardWithSeed(y, must.M1(tensor.Ones(tensor.Shape{2, 3})))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	_, err = x.Derivative()
	assert.ErrorIs(t, err, autodiff.ErrNoGradient, "nothing is accumulated from a rejected seed")

	a := o.Leaf(must.M1(tensor.Ones(tensor.Shape{3})), true)
	b := o.Leaf(must.M1(tensor.Ones(tensor.Shape{3})), true)
	z := must.M1(o.Add(a, b))
	assert.ErrorIs(t, o.BackwardWithSeed(z, must.M1(tensor.Ones(tensor.Shape{2, 3}))), tensor.ErrShapeMismatch)
	_, err = a.Derivative()
	assert.ErrorIs(t, err, autodiff.ErrNoGradient)
}

// widening returns a gradient broadcast to a larger shape than its input.
type widening struct{ ops.NegOp }

func (widening) Backward(_ *ops.Ctx, grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	out, err := grad.Expand(tensor.Shape{2, grad.Shape()[0]})
	return []*tensor.Tensor{out}, err
}

func TestGradientShapeMustMatchInput(t *testing.T) {
	backend := cpu.New()
	o := ops.New(backend)
	x := o.Leaf(must.M1(tensor.Ones(tensor.Shape{3})), true)
	y := must.M1(o.Engine().Apply(widening{ops.NegOp{Backend: backend}}, x))

	err := o.Backward(y)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	_, err = x.Derivative()
	assert.ErrorIs(t, err, autodiff.ErrNoGradient)
}

func TestAlgebraRejectsShapeMismatch(t *testing.T) {
	alg := ops.Algebra{Backend: cpu.New()}
	x := must.M1(tensor.Ones(tensor.Shape{3}))
	wide := must.M1(tensor.Ones(tensor.Shape{2, 3}))

	_, err := alg.Add(x, wide)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	_, err = alg.Axpy(1, wide, x)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.ErrorIs(t, alg.Compatible(x, wide), tensor.ErrShapeMismatch)
	assert.NoError(t, alg.Compatible(x, must.M1(tensor.Zeros(tensor.Shape{3}))))
}

func TestMeanBackwardWithBadContext(t *testing.T) {
	ctx := &ops.Ctx{}
	ctx.SaveAux(tensor.Shape{2, 3}, "1")
	_, err := ops.MeanDimOp{Backend: cpu.New(), Dim: 1}.Backward(ctx, must.M1(tensor.Ones(tensor.Shape{2})))
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
}

// TestBackwardReleasesTemporaryViews tests that the transposes and expands
// created inside backward do not leave references on their storage.
func TestBackwardReleasesTemporaryViews(t *testing.T) {
	o := ops.New(cpu.New())
	a := o.Leaf(fromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3), true)
	b := o.Leaf(fromSlice([]float64{1, 0, 0, 1, 1, 1}, 3, 2), true)
	bias := o.Leaf(fromSlice([]float64{1, 2}, 2), true)

	c := must.M1(o.Add(must.M1(o.MatMul(a, b)), bias))
	loss := must.M1(o.SumAll(must.M1(o.Sum(c, 1, false))))
	require.NoError(t, o.Backward(loss))

	assert.Equal(t, 1, a.Data().Storage().RefCount())
	assert.Equal(t, 1, b.Data().Storage().RefCount())
	assert.False(t, a.Data().Storage().IsShared())
	assert.Equal(t, []float64{2, 2}, must.M1(bias.Derivative()).ToSlice())

	s := must.M1(o.Sum(a, 0, false))
	assert.Equal(t, 1, s.Data().Storage().RefCount(), "the dropped reduction dimension leaves no extra view")
}
