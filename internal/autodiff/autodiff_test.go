package autodiff_test

import (
	"testing"

	"github.com/born-ml/minitorch/internal/autodiff"
	"github.com/born-ml/minitorch/internal/autodiff/scalar"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(opts ...autodiff.Option) *autodiff.Engine[float64] {
	return autodiff.NewEngine[float64](scalar.Algebra{}, opts...)
}

// TestApply_RecordsHistory tests that Apply links outputs back to inputs.
func TestApply_RecordsHistory(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	y := e.Leaf(4, true)

	z := must.M1(e.Apply(scalar.MulFn{}, x, y))
	assert.Equal(t, 12.0, z.Data())
	assert.False(t, z.IsLeaf())
	assert.True(t, z.RequiresGrad())
	require.NotNil(t, z.History())
	assert.Equal(t, "Mul", z.History().Function.Name())
	assert.Equal(t, []*autodiff.Value[float64]{x, y}, z.Inputs())
	assert.NotEqual(t, x.ID(), y.ID())
	assert.NotEqual(t, x.ID(), z.ID())
}

// TestValueIdentity tests that equal payloads are still distinct nodes.
func TestValueIdentity(t *testing.T) {
	e := newEngine()
	a, b := e.Leaf(1, true), e.Leaf(1, true)
	assert.NotEqual(t, a.ID(), b.ID())

	s := must.M1(e.Apply(scalar.AddFn{}, a, b))
	require.NoError(t, e.Backward(s))
	assert.Equal(t, 1.0, must.M1(a.Derivative()))
	assert.Equal(t, 1.0, must.M1(b.Derivative()))
}

// TestTopologicalSort_OrderProperty checks consumer-before-producer on every edge.
func TestTopologicalSort_OrderProperty(t *testing.T) {
	e := newEngine()
	x := e.Leaf(2, true)
	y := e.Leaf(5, true)
	a := must.M1(e.Apply(scalar.MulFn{}, x, y))
	b := must.M1(e.Apply(scalar.AddFn{}, a, x))
	c := must.M1(e.Apply(scalar.MulFn{}, a, b))
	root := must.M1(e.Apply(scalar.AddFn{}, c, must.M1(e.Apply(scalar.NegFn{}, b))))

	order := must.M1(autodiff.TopologicalSort(root))
	require.Len(t, order, 7) // root, c, neg, b, a, x, y
	assert.Same(t, root, order[0])

	index := make(map[autodiff.ID]int, len(order))
	for i, v := range order {
		_, dup := index[v.ID()]
		require.False(t, dup, "value %d appears twice", v.ID())
		index[v.ID()] = i
	}
	for _, consumer := range order {
		for _, producer := range consumer.Inputs() {
			assert.Less(t, index[consumer.ID()], index[producer.ID()],
				"consumer %v must precede producer %v", consumer, producer)
		}
	}
}

// TestTopologicalSort_SkipsConstants tests that constants are not part of the order.
func TestTopologicalSort_SkipsConstants(t *testing.T) {
	e := newEngine()
	x := e.Leaf(2, true)
	c := e.Constant(10)
	y := must.M1(e.Apply(scalar.MulFn{}, x, c))

	order := must.M1(autodiff.TopologicalSort(y))
	assert.Equal(t, []*autodiff.Value[float64]{y, x}, order)

	empty := must.M1(autodiff.TopologicalSort(c))
	assert.Empty(t, empty)
}

// TestBackward_DeepChain tests a long chain does not exhaust the stack.
func TestBackward_DeepChain(t *testing.T) {
	e := newEngine()
	x := e.Leaf(1, true)
	one := e.Constant(1)
	v := x
	for range 100_000 {
		v = must.M1(e.Apply(scalar.AddFn{}, v, one))
	}
	require.NoError(t, e.Backward(v))
	assert.Equal(t, 1.0, must.M1(x.Derivative()))
	assert.Equal(t, 100_001.0, v.Data())
}

// TestBackward_SharedSubgraph tests accumulation when an intermediate value is reused.
func TestBackward_SharedSubgraph(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	sq := must.M1(e.Apply(scalar.MulFn{}, x, x))    // x²
	quad := must.M1(e.Apply(scalar.MulFn{}, sq, sq)) // x⁴
	require.NoError(t, e.Backward(quad))
	assert.InDelta(t, 4*27.0, must.M1(x.Derivative()), 1e-9)
}

// TestBackward_LeavesOnlyByDefault tests the non-leaf retention opt-in.
func TestBackward_LeavesOnlyByDefault(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	a := must.M1(e.Apply(scalar.MulFn{}, x, x))
	b := must.M1(e.Apply(scalar.MulFn{}, x, x)).RetainGrad()
	root := must.M1(e.Apply(scalar.AddFn{}, a, b))
	require.NoError(t, e.Backward(root))

	_, err := a.Derivative()
	assert.ErrorIs(t, err, autodiff.ErrNoGradient)
	assert.Equal(t, 1.0, must.M1(b.Derivative()))
	assert.Equal(t, 12.0, must.M1(x.Derivative()))
}

// TestBackward_ReleasesGraph tests that contexts are freed after backward.
func TestBackward_ReleasesGraph(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	y := must.M1(e.Apply(scalar.MulFn{}, x, x))
	require.NoError(t, e.Backward(y))
	assert.True(t, y.History().Context.Released())

	err := e.Backward(y)
	require.Error(t, err)
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
	assert.True(t, autodiff.IsFatal(err))
}

// TestBackward_RetainGraph tests differentiating the same graph twice.
func TestBackward_RetainGraph(t *testing.T) {
	e := newEngine(autodiff.WithRetainGraph(true))
	x := e.Leaf(3, true)
	y := must.M1(e.Apply(scalar.MulFn{}, x, x))
	require.NoError(t, e.Backward(y))
	require.NoError(t, e.Backward(y))
	assert.Equal(t, 12.0, must.M1(x.Derivative()))
}

// TestBackward_Seed tests a custom seed scales every derivative.
func TestBackward_Seed(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	y := must.M1(e.Apply(scalar.MulFn{}, x, x))
	require.NoError(t, e.BackwardWithSeed(y, 0.5))
	assert.Equal(t, 3.0, must.M1(x.Derivative()))
}

// badArity returns a single gradient for a binary function.
type badArity struct{ scalar.AddFn }

func (badArity) Backward(_ *autodiff.Context[float64], grad float64) ([]float64, error) {
	return []float64{grad}, nil
}

// unsaved reads a value its forward never saved.
type unsaved struct{ scalar.NegFn }

func (unsaved) Backward(ctx *autodiff.Context[float64], _ float64) ([]float64, error) {
	x, err := ctx.Saved(0)
	return []float64{x}, err
}

// panicky panics in backward.
type panicky struct{ scalar.NegFn }

func (panicky) Backward(_ *autodiff.Context[float64], _ float64) ([]float64, error) {
	var grads []float64
	return []float64{grads[3]}, nil
}

// shouting panics with a plain string instead of an error.
type shouting struct{ scalar.NegFn }

func (shouting) Backward(_ *autodiff.Context[float64], _ float64) ([]float64, error) {
	panic("backward is not implemented")
}

// shoutingForward panics with a plain string in forward.
type shoutingForward struct{ scalar.NegFn }

func (shoutingForward) Forward(_ *autodiff.Context[float64], _ ...float64) (float64, error) {
	panic("forward is not implemented")
}

// TestBackward_FatalErrors tests the internal-consistency error taxonomy.
func TestBackward_FatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(e *autodiff.Engine[float64], x *autodiff.Value[float64]) *autodiff.Value[float64]
		want  error
	}{
		{"arity", func(e *autodiff.Engine[float64], x *autodiff.Value[float64]) *autodiff.Value[float64] {
			return must.M1(e.Apply(badArity{}, x, x))
		}, autodiff.ErrArity},
		{"missing context", func(e *autodiff.Engine[float64], x *autodiff.Value[float64]) *autodiff.Value[float64] {
			return must.M1(e.Apply(unsaved{}, x))
		}, autodiff.ErrMissingContext},
		{"panic", func(e *autodiff.Engine[float64], x *autodiff.Value[float64]) *autodiff.Value[float64] {
			return must.M1(e.Apply(panicky{}, x))
		}, autodiff.ErrOperationPanic},
		{"string panic", func(e *autodiff.Engine[float64], x *autodiff.Value[float64]) *autodiff.Value[float64] {
			return must.M1(e.Apply(shouting{}, x))
		}, autodiff.ErrOperationPanic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			x := e.Leaf(1, true)
			err := e.Backward(tt.build(e, x))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, autodiff.IsFatal(err))
		})
	}
}

// TestApply_ForwardPanicIsReported tests that a wrong input count becomes an error.
func TestApply_ForwardPanicIsReported(t *testing.T) {
	e := newEngine()
	x := e.Leaf(1, true)
	_, err := e.Apply(scalar.MulFn{}, x)
	assert.ErrorIs(t, err, autodiff.ErrOperationPanic)

	_, err = e.Apply(scalar.MulFn{}, x, nil)
	require.Error(t, err)
	assert.False(t, autodiff.IsFatal(err))

	_, err = e.Apply(shoutingForward{}, x)
	assert.ErrorIs(t, err, autodiff.ErrOperationPanic)
	assert.Contains(t, err.Error(), "forward is not implemented")
}

// TestDetach tests that gradients do not flow through detached values.
func TestDetach(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	y := must.M1(e.Apply(scalar.MulFn{}, x, x))
	d := y.Detach()
	assert.Equal(t, 9.0, d.Data())
	assert.True(t, d.IsConstant())

	z := must.M1(e.Apply(scalar.MulFn{}, d, x))
	require.NoError(t, e.Backward(z))
	assert.Equal(t, 9.0, must.M1(x.Derivative()))
}

// TestSetData tests that only leaves can be updated in place.
func TestSetData(t *testing.T) {
	e := newEngine()
	x := e.Leaf(3, true)
	require.NoError(t, x.SetData(4))
	assert.Equal(t, 4.0, x.Data())

	y := must.M1(e.Apply(scalar.NegFn{}, x))
	assert.Error(t, y.SetData(1))
}

// TestContextAux tests non-payload saved values.
func TestContextAux(t *testing.T) {
	ctx := &autodiff.Context[float64]{}
	ctx.SaveAux([]int{1, 0}, "name")
	axes := must.M1(autodiff.AuxAs[[]int](ctx, 0))
	assert.Equal(t, []int{1, 0}, axes)

	_, err := autodiff.AuxAs[int](ctx, 1)
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
	_, err = ctx.Aux(2)
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
}
