// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/minitorch/autodiff"
	"github.com/born-ml/minitorch/backend/cpu"
	"github.com/born-ml/minitorch/nn"
	"github.com/born-ml/minitorch/optim"
	"github.com/born-ml/minitorch/scalar"
	"github.com/born-ml/minitorch/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarAPI(t *testing.T) {
	x := scalar.New(2)
	y := scalar.Mul(x, scalar.Add(x, scalar.Constant(1)))
	require.NoError(t, scalar.Backward(y))
	d, err := x.Derivative()
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	order, err := autodiff.TopologicalSort(y)
	require.NoError(t, err)
	assert.Same(t, y, order[0])
	assert.Same(t, x, order[len(order)-1])
}

func TestTensorAPI(t *testing.T) {
	o := autodiff.NewTensorOps(cpu.NewWithConfig(cpu.Config{Strategy: cpu.Sequential}))
	x := o.Leaf(must.M1(tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})), true)
	y := must.M1(o.SumAll(must.M1(o.Mul(x, x))))
	require.NoError(t, o.Backward(y))
	assert.Equal(t, []float64{2, 4, 6}, must.M1(x.Derivative()).ToSlice())

	err := o.Backward(y)
	assert.ErrorIs(t, err, autodiff.ErrMissingContext)
	assert.True(t, autodiff.IsFatal(err))
}

func TestTrainingLoop(t *testing.T) {
	backend := cpu.New()
	o := autodiff.NewTensorOps(backend)
	rng := rand.New(rand.NewSource(5))
	layer := must.M1(nn.NewLinear(o, 2, 1, rng))

	// y = x0 - 2*x1 + 0.5
	x := o.Constant(must.M1(tensor.FromSlice([]float64{0, 0, 1, 0, 0, 1, 1, 1, -1, 2}, tensor.Shape{5, 2})))
	y := o.Constant(must.M1(tensor.FromSlice([]float64{0.5, 1.5, -1.5, -0.5, -4.5}, tensor.Shape{5, 1})))

	sgd := optim.NewSGD(layer.Module().Parameters(), autodiff.TensorAlgebra{Backend: backend},
		optim.SGDConfig{LR: 0.05, Momentum: 0.5})
	var loss *autodiff.Var
	for range 500 {
		sgd.ZeroGrad()
		loss = must.M1(nn.MSELoss(o, must.M1(layer.Forward(x)), y))
		require.NoError(t, o.Backward(loss))
		require.NoError(t, sgd.Step())
	}
	assert.Less(t, loss.Data().Item(), 1e-6)
	assert.InDeltaSlice(t, []float64{1, -2}, layer.Weight().Data().ToSlice(), 1e-3)
}
