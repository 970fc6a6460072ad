// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/minitorch/autodiff"
	"github.com/born-ml/minitorch/internal/nn"
	"github.com/born-ml/minitorch/tensor"
)

// Module is an ordered registry of named fields.
type Module[P any] = nn.Module[P]

// Field is one registered entry of a Module.
type Field[P any] = nn.Field[P]

// FieldKind tags what a Field holds.
type FieldKind = nn.FieldKind

// Field kinds.
const (
	ParameterField = nn.ParameterField
	SubmoduleField = nn.SubmoduleField
	PlainDataField = nn.PlainDataField
)

// NamedParameter pairs a parameter with its dotted path.
type NamedParameter[P any] = nn.NamedParameter[P]

// Parameter represents a trainable parameter.
type Parameter[P any] = nn.Parameter[P]

// Errors.
var (
	ErrDuplicateField = nn.ErrDuplicateField
	ErrInvalidField   = nn.ErrInvalidField
)

// NewModule creates an empty module in training mode.
func NewModule[P any](name string) *Module[P] {
	return nn.NewModule[P](name)
}

// NewParameter wraps value, which should be a leaf that requires grad.
func NewParameter[P any](name string, value *autodiff.Value[P]) *Parameter[P] {
	return nn.NewParameter(name, value)
}

// Layers

// Layer is a module computing a tensor output from a tensor input.
type Layer = nn.Layer

// Linear represents a fully connected layer: y = x @ W^T + b.
type Linear = nn.Linear

// NewLinear creates a linear layer with Xavier-initialized weights.
//
// Example:
//
//	layer, err := nn.NewLinear(o, 784, 128, rand.New(rand.NewSource(1)))
func NewLinear(o *autodiff.Ops, inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	return nn.NewLinear(o, inFeatures, outFeatures, rng)
}

// Sequential chains layers, registered as submodules "0", "1", ...
type Sequential = nn.Sequential

// NewSequential creates a Sequential from layers.
func NewSequential(layers ...Layer) (*Sequential, error) {
	return nn.NewSequential(layers...)
}

// ReLU is the max(x, 0) activation layer.
type ReLU = nn.ReLU

// NewReLU creates a ReLU layer.
func NewReLU(o *autodiff.Ops) *ReLU {
	return nn.NewReLU(o)
}

// Sigmoid is the logistic activation layer.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a Sigmoid layer.
func NewSigmoid(o *autodiff.Ops) *Sigmoid {
	return nn.NewSigmoid(o)
}

// MSELoss returns mean((predictions - targets)²).
func MSELoss(o *autodiff.Ops, predictions, targets *autodiff.Var) (*autodiff.Var, error) {
	return nn.MSELoss(o, predictions, targets)
}

// Xavier returns a tensor drawn from U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) (*tensor.Tensor, error) {
	return nn.Xavier(fanIn, fanOut, shape, rng)
}
