// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update nn parameters in place.
//
// Example:
//
//	sgd := optim.NewSGD(model.Module().Parameters(),
//	    autodiff.TensorAlgebra{Backend: backend},
//	    optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//	for epoch := range epochs {
//	    sgd.ZeroGrad()
//	    loss, _ := nn.MSELoss(o, must.M1(model.Forward(x)), y)
//	    _ = o.Backward(loss)
//	    _ = sgd.Step()
//	}
//
// Adam needs element-wise arithmetic as well, which both
// autodiff.TensorAlgebra and scalar.Algebra provide:
//
//	adam := optim.NewAdam(model.Module().Parameters(),
//	    autodiff.TensorAlgebra{Backend: backend}, optim.DefaultAdamConfig())
package optim

import (
	"github.com/born-ml/minitorch/internal/nn"
	"github.com/born-ml/minitorch/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Axpy computes alpha*x + y on a payload type.
type Axpy[P any] = optim.Axpy[P]

// SGD represents the SGD optimizer with optional momentum.
type SGD[P any] = optim.SGD[P]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// DefaultSGDConfig returns LR 0.01 without momentum.
func DefaultSGDConfig() SGDConfig {
	return optim.DefaultSGDConfig()
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD[P any](params []*nn.Parameter[P], algebra Axpy[P], config SGDConfig) *SGD[P] {
	return optim.NewSGD(params, algebra, config)
}

// Elementwise adds element-by-element combination to Axpy.
type Elementwise[P any] = optim.Elementwise[P]

// Adam represents the Adam optimizer.
type Adam[P any] = optim.Adam[P]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// DefaultAdamConfig returns LR 0.001, betas (0.9, 0.999) and eps 1e-8.
func DefaultAdamConfig() AdamConfig {
	return optim.DefaultAdamConfig()
}

// NewAdam creates a new Adam optimizer over params.
func NewAdam[P any](params []*nn.Parameter[P], algebra Elementwise[P], config AdamConfig) *Adam[P] {
	return optim.NewAdam(params, algebra, config)
}
