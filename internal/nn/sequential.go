package nn

import (
	"strconv"

	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// Layer is a module computing a tensor output from a tensor input.
type Layer interface {
	Forward(x *ops.Var) (*ops.Var, error)
	Module() *Module[*tensor.Tensor]
}

// Sequential is a container module that chains multiple layers together.
//
// Each layer's output becomes the next layer's input. Layers are registered
// as submodules named by their position ("0", "1", ...), so parameter paths
// read like "0.weight".
//
// Example:
//
//	model, err := nn.NewSequential(
//	    must.M1(nn.NewLinear(o, 4, 8, rng)),
//	    nn.NewReLU(o),
//	    must.M1(nn.NewLinear(o, 8, 1, rng)),
//	)
type Sequential struct {
	module *Module[*tensor.Tensor]
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) (*Sequential, error) {
	s := &Sequential{module: NewModule[*tensor.Tensor]("Sequential")}
	for _, l := range layers {
		if err := s.Add(l); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a layer to the sequence.
func (s *Sequential) Add(l Layer) error {
	if err := s.module.RegisterModule(strconv.Itoa(len(s.layers)), l.Module()); err != nil {
		return err
	}
	s.layers = append(s.layers, l)
	return nil
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(x *ops.Var) (*ops.Var, error) {
	out := x
	for i, l := range s.layers {
		var err error
		if out, err = l.Forward(out); err != nil {
			return nil, errors.WithMessagef(err, "layer %d (%s)", i, l.Module().Name())
		}
	}
	return out, nil
}

// Module implements Layer.
func (s *Sequential) Module() *Module[*tensor.Tensor] {
	return s.module
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}
