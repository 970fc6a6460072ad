package nn

import "github.com/born-ml/minitorch/internal/autodiff"

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter names a leaf Value that requires grad. The Value keeps its ID
// across optimizer updates, so graphs built in later steps still reach it.
//
// Example:
//
//	weight := nn.NewParameter("weight", o.Leaf(w, true))
//	...
//	grad, ok := weight.Grad() // after Backward
type Parameter[P any] struct {
	name  string
	value *autodiff.Value[P]
}

// NewParameter creates a new trainable parameter over a leaf Value.
func NewParameter[P any](name string, value *autodiff.Value[P]) *Parameter[P] {
	return &Parameter[P]{name: name, value: value}
}

// Name returns the parameter name.
func (p *Parameter[P]) Name() string {
	return p.name
}

// Value returns the graph node to use in forward computations.
func (p *Parameter[P]) Value() *autodiff.Value[P] {
	return p.value
}

// Data returns the current payload.
func (p *Parameter[P]) Data() P {
	return p.value.Data()
}

// Grad returns the accumulated derivative, or false if no backward pass
// reached this parameter since the last ZeroGrad.
func (p *Parameter[P]) Grad() (P, bool) {
	g, err := p.value.Derivative()
	return g, err == nil
}

// Update replaces the payload, typically with an optimizer step result.
func (p *Parameter[P]) Update(data P) error {
	return p.value.SetData(data)
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter[P]) ZeroGrad() {
	p.value.ZeroGrad()
}
