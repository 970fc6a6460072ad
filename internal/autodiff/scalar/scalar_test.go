package scalar_test

import (
	"math"
	"testing"

	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/autodiff/scalar"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

// centralDifference estimates df/dx at x.
func centralDifference(f func(float64) float64, x float64) float64 {
	const eps = 1e-6
	return (f(x+eps) - f(x-eps)) / (2 * eps)
}

// derivative builds f on a fresh leaf, back-propagates, and returns df/dx.
func derivative(t *testing.T, build func(x *scalar.Value) *scalar.Value, at float64) float64 {
	t.Helper()
	x := scalar.New(at)
	require.NoError(t, scalar.Backward(build(x)))
	return must.M1(x.Derivative())
}

func TestMulForwardBackward(t *testing.T) {
	ctx := &autodiff.Context[float64]{}
	out, err := scalar.MulFn{}.Forward(ctx, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12.0, out)

	grads, err := scalar.MulFn{}.Backward(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3}, grads)
}

func TestMulBackwardWithoutForward(t *testing.T) {
	_, err := scalar.MulFn{}.Backward(&autodiff.Context[float64]{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
	assert.True(t, autodiff.IsFatal(err))
}

func TestNegation(t *testing.T) {
	x := scalar.New(5)
	y := scalar.Neg(x)
	assert.Equal(t, -5.0, y.Data())

	require.NoError(t, scalar.BackwardWithSeed(y, 1))
	assert.Equal(t, -1.0, must.M1(x.Derivative()))
}

func TestDiamondDependency(t *testing.T) {
	// f(x) = x + x  =>  df/dx = 2, not 1.
	x := scalar.New(3)
	require.NoError(t, scalar.Backward(scalar.Add(x, x)))
	assert.Equal(t, 2.0, must.M1(x.Derivative()))

	// g(x) = (x*2) * (x+1): two paths through intermediate values.
	x = scalar.New(3)
	two, one := scalar.Constant(2), scalar.Constant(1)
	a := scalar.Mul(x, two)
	b := scalar.Add(x, one)
	require.NoError(t, scalar.Backward(scalar.Mul(a, b)))
	// d/dx 2x(x+1) = 4x + 2
	assert.InDelta(t, 14.0, must.M1(x.Derivative()), tol)
	assert.False(t, two.HasDerivative(), "constants never receive gradients")
}

func TestSymbolicDerivatives(t *testing.T) {
	// Expressions over {add, mul, neg} against hand-derived derivatives.
	tests := []struct {
		name  string
		build func(x *scalar.Value) *scalar.Value
		want  func(x float64) float64
	}{
		{"x*x", func(x *scalar.Value) *scalar.Value { return scalar.Mul(x, x) },
			func(x float64) float64 { return 2 * x }},
		{"-(x*x*x)", func(x *scalar.Value) *scalar.Value { return scalar.Neg(scalar.Mul(scalar.Mul(x, x), x)) },
			func(x float64) float64 { return -3 * x * x }},
		{"x*x + -x + 7", func(x *scalar.Value) *scalar.Value {
			return scalar.Add(scalar.Add(scalar.Mul(x, x), scalar.Neg(x)), scalar.Constant(7))
		}, func(x float64) float64 { return 2*x - 1 }},
		{"(x+1)*(x+2)*x", func(x *scalar.Value) *scalar.Value {
			one, two := scalar.Constant(1), scalar.Constant(2)
			return scalar.Mul(scalar.Mul(scalar.Add(x, one), scalar.Add(x, two)), x)
		}, func(x float64) float64 { return 3*x*x + 6*x + 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range []float64{-2.5, -1, 0, 0.5, 3} {
				assert.InDelta(t, tt.want(at), derivative(t, tt.build, at), tol, "at x=%g", at)
			}
		})
	}
}

func TestNumericalGradients(t *testing.T) {
	tests := []struct {
		name  string
		build func(x *scalar.Value) *scalar.Value
		f     func(x float64) float64
		at    []float64
	}{
		{"log", scalar.Log, math.Log, []float64{0.3, 1, 4}},
		{"exp", scalar.Exp, math.Exp, []float64{-1, 0, 2}},
		{"inv", scalar.Inv, func(x float64) float64 { return 1 / x }, []float64{-2, 0.5, 3}},
		{"sigmoid", scalar.Sigmoid, scalar.Sigmoid64, []float64{-30, -1, 0, 2, 30}},
		{"relu", scalar.ReLU, func(x float64) float64 { return math.Max(x, 0) }, []float64{-1, 0.5, 2}},
		{"div", func(x *scalar.Value) *scalar.Value { return scalar.Div(scalar.Constant(3), x) },
			func(x float64) float64 { return 3 / x }, []float64{-1, 2}},
		{"sub", func(x *scalar.Value) *scalar.Value { return scalar.Sub(scalar.Constant(3), scalar.Mul(x, x)) },
			func(x float64) float64 { return 3 - x*x }, []float64{-1, 2}},
		{"log(sigmoid(x)*x)", func(x *scalar.Value) *scalar.Value { return scalar.Log(scalar.Mul(scalar.Sigmoid(x), x)) },
			func(x float64) float64 { return math.Log(scalar.Sigmoid64(x) * x) }, []float64{0.5, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range tt.at {
				assert.InDelta(t, centralDifference(tt.f, at), derivative(t, tt.build, at), 1e-4, "at x=%g", at)
			}
		})
	}
}

func TestComparisonsHaveZeroDerivative(t *testing.T) {
	x, y := scalar.New(1), scalar.New(2)
	lt := scalar.LT(x, y)
	assert.Equal(t, 1.0, lt.Data())
	assert.Equal(t, 0.0, scalar.EQ(x, y).Data())

	require.NoError(t, scalar.Backward(lt))
	assert.Equal(t, 0.0, must.M1(x.Derivative()))
	assert.Equal(t, 0.0, must.M1(y.Derivative()), "computed as zero is distinct from never computed")
}

func TestDerivativeBeforeBackward(t *testing.T) {
	x := scalar.New(1)
	_, err := x.Derivative()
	assert.ErrorIs(t, err, autodiff.ErrNoGradient)
}

func TestResetAndRerunIsIdempotent(t *testing.T) {
	w := scalar.New(1.5)
	step := func() float64 {
		y := scalar.Sigmoid(scalar.Mul(w, scalar.Constant(2)))
		require.NoError(t, scalar.Backward(y))
		return must.M1(w.Derivative())
	}
	first := step()
	w.ZeroGrad()
	assert.False(t, w.HasDerivative())
	assert.Equal(t, first, step())

	// Without ZeroGrad, derivatives accumulate.
	assert.InDelta(t, 2*first, step(), 1e-12)
}

func TestConstantsDoNotGrowGraph(t *testing.T) {
	c := scalar.Add(scalar.Constant(1), scalar.Constant(2))
	assert.True(t, c.IsLeaf())
	assert.True(t, c.IsConstant())
	assert.Equal(t, 3.0, c.Data())
	assert.ErrorIs(t, scalar.Backward(c), autodiff.ErrNotDifferentiable)
}

func TestSum(t *testing.T) {
	xs := []*scalar.Value{scalar.New(1), scalar.New(2), scalar.New(3)}
	s := scalar.Sum(xs...)
	assert.Equal(t, 6.0, s.Data())
	require.NoError(t, scalar.Backward(s))
	for _, x := range xs {
		assert.Equal(t, 1.0, must.M1(x.Derivative()))
	}
	assert.True(t, scalar.Sum().IsConstant())
}
