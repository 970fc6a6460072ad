package nn

import (
	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct {
	module *Module[*tensor.Tensor]
	ops    *ops.Ops
}

// NewReLU creates a new ReLU activation module.
func NewReLU(o *ops.Ops) *ReLU {
	return &ReLU{module: NewModule[*tensor.Tensor]("ReLU"), ops: o}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(x *ops.Var) (*ops.Var, error) {
	return r.ops.ReLU(x)
}

// Module implements Layer. ReLU has no parameters.
func (r *ReLU) Module() *Module[*tensor.Tensor] {
	return r.module
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: f(x) = 1 / (1 + exp(-x))
type Sigmoid struct {
	module *Module[*tensor.Tensor]
	ops    *ops.Ops
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid(o *ops.Ops) *Sigmoid {
	return &Sigmoid{module: NewModule[*tensor.Tensor]("Sigmoid"), ops: o}
}

// Forward applies sigmoid activation.
func (s *Sigmoid) Forward(x *ops.Var) (*ops.Var, error) {
	return s.ops.Sigmoid(x)
}

// Module implements Layer. Sigmoid has no parameters.
func (s *Sigmoid) Module() *Module[*tensor.Tensor] {
	return s.module
}
