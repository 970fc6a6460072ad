package optim

import (
	"github.com/born-ml/minitorch/internal/nn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens oscillations.
type SGD[P any] struct {
	params     []*nn.Parameter[P]
	algebra    Axpy[P]
	config     SGDConfig
	velocities map[*nn.Parameter[P]]P
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// DefaultSGDConfig returns plain SGD with learning rate 0.01.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{LR: 0.01}
}

// NewSGD creates a new SGD optimizer over params. A zero LR is replaced by
// the default.
func NewSGD[P any](params []*nn.Parameter[P], algebra Axpy[P], config SGDConfig) *SGD[P] {
	if config.LR == 0 {
		config.LR = DefaultSGDConfig().LR
	}
	return &SGD[P]{
		params:     params,
		algebra:    algebra,
		config:     config,
		velocities: make(map[*nn.Parameter[P]]P),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not reached by the last Backward) are skipped.
func (s *SGD[P]) Step() error {
	updated := 0
	for _, param := range s.params {
		grad, ok := param.Grad()
		if !ok {
			continue
		}

		direction := grad
		if s.config.Momentum != 0 {
			if v, ok := s.velocities[param]; ok {
				var err error
				if direction, err = s.algebra.Axpy(s.config.Momentum, v, grad); err != nil {
					return errors.WithMessagef(err, "sgd: velocity of %q", param.Name())
				}
			}
			s.velocities[param] = direction
		}

		next, err := s.algebra.Axpy(-s.config.LR, direction, param.Data())
		if err != nil {
			return errors.WithMessagef(err, "sgd: update of %q", param.Name())
		}
		if err := param.Update(next); err != nil {
			return err
		}
		updated++
	}
	klog.V(2).Infof("optim: SGD step updated %d of %d parameters (lr=%g)", updated, len(s.params), s.config.LR)
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[P]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD[P]) LR() float64 {
	return s.config.LR
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD[P]) SetLR(lr float64) {
	s.config.LR = lr
}

var _ Optimizer = (*SGD[float64])(nil)
