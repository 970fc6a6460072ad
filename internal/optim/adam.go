package optim

import (
	"math"

	"github.com/born-ml/minitorch/internal/nn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Moments start at zero and are created the first time a parameter receives
// a gradient. The timestep is shared by all parameters.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[P any] struct {
	params  []*nn.Parameter[P]
	algebra Elementwise[P]
	config  AdamConfig
	t       int
	m       map[*nn.Parameter[P]]P // First moment estimates
	v       map[*nn.Parameter[P]]P // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// DefaultAdamConfig returns the usual Adam hyperparameters.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{LR: 0.001, Betas: [2]float64{0.9, 0.999}, Eps: 1e-8}
}

// NewAdam creates a new Adam optimizer over params. Zero fields of config are
// replaced by their defaults.
func NewAdam[P any](params []*nn.Parameter[P], algebra Elementwise[P], config AdamConfig) *Adam[P] {
	defaults := DefaultAdamConfig()
	if config.LR == 0 {
		config.LR = defaults.LR
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = defaults.Betas[0]
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = defaults.Betas[1]
	}
	if config.Eps == 0 {
		config.Eps = defaults.Eps
	}
	return &Adam[P]{
		params:  params,
		algebra: algebra,
		config:  config,
		m:       make(map[*nn.Parameter[P]]P),
		v:       make(map[*nn.Parameter[P]]P),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped and keep their moments.
func (a *Adam[P]) Step() error {
	a.t++
	beta1, beta2, eps := a.config.Betas[0], a.config.Betas[1], a.config.Eps
	biasCorrection1 := 1 - math.Pow(beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(beta2, float64(a.t))

	updated := 0
	for _, param := range a.params {
		grad, ok := param.Grad()
		if !ok {
			continue
		}

		m, err := a.moment(a.m, param, grad, func(m, g float64) float64 {
			return beta1*m + (1-beta1)*g
		})
		if err != nil {
			return errors.WithMessagef(err, "adam: first moment of %q", param.Name())
		}
		v, err := a.moment(a.v, param, grad, func(v, g float64) float64 {
			return beta2*v + (1-beta2)*g*g
		})
		if err != nil {
			return errors.WithMessagef(err, "adam: second moment of %q", param.Name())
		}

		direction, err := a.algebra.Zip(m, v, func(m, v float64) float64 {
			return (m / biasCorrection1) / (math.Sqrt(v/biasCorrection2) + eps)
		})
		if err != nil {
			return errors.WithMessagef(err, "adam: direction of %q", param.Name())
		}
		next, err := a.algebra.Axpy(-a.config.LR, direction, param.Data())
		if err != nil {
			return errors.WithMessagef(err, "adam: update of %q", param.Name())
		}
		if err := param.Update(next); err != nil {
			return err
		}
		updated++
	}
	klog.V(2).Infof("optim: Adam step %d updated %d of %d parameters (lr=%g)", a.t, updated, len(a.params), a.config.LR)
	return nil
}

// moment advances one moment estimate of param. A missing estimate is zero,
// so the first update is fn(0, g).
func (a *Adam[P]) moment(state map[*nn.Parameter[P]]P, param *nn.Parameter[P], grad P, fn func(prev, g float64) float64) (P, error) {
	prev, ok := state[param]
	var (
		next P
		err  error
	)
	if ok {
		next, err = a.algebra.Zip(prev, grad, fn)
	} else {
		next, err = a.algebra.Zip(grad, grad, func(g, _ float64) float64 { return fn(0, g) })
	}
	if err != nil {
		return next, err
	}
	state[param] = next
	return next, nil
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[P]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam[P]) LR() float64 {
	return a.config.LR
}

// SetLR updates the learning rate.
func (a *Adam[P]) SetLR(lr float64) {
	a.config.LR = lr
}

// Timestep returns the number of steps taken so far.
func (a *Adam[P]) Timestep() int {
	return a.t
}

var _ Optimizer = (*Adam[float64])(nil)
