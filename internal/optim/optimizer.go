// Package optim implements optimization algorithms for training models built
// on the autodiff engine.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers are generic over the payload type; the arithmetic comes from
// the payload algebra (scalar.Algebra, ops.Algebra).
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Module().Parameters(), ops.Algebra{Backend: backend},
//	    optim.SGDConfig{LR: 0.05})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    loss, _ := nn.MSELoss(o, must.M1(model.Forward(x)), y)
//	    _ = o.Backward(loss)
//	    _ = optimizer.Step()
//	}
package optim

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameters based on the derivatives accumulated by the
// last Backward to minimize the loss function during training.
type Optimizer interface {
	// Step applies gradient updates to all parameters that received a gradient.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}

// Axpy is the payload arithmetic optimizers need: alpha*x + y, returning a
// new payload.
type Axpy[P any] interface {
	Axpy(alpha float64, x, y P) (P, error)
}

// Elementwise extends Axpy with an element-by-element combination of two
// payloads of the same shape, for optimizers that keep per-element state.
type Elementwise[P any] interface {
	Axpy[P]
	Zip(x, y P, fn func(x, y float64) float64) (P, error)
}
