package nn

import (
	"math/rand"

	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// W.T is a stride view, so the transpose never copies the weights.
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	module      *Module[*tensor.Tensor]
	ops         *ops.Ops
	inFeatures  int
	outFeatures int
	weight      *Parameter[*tensor.Tensor]
	bias        *Parameter[*tensor.Tensor]
}

// NewLinear creates a new Linear layer whose parameters are leaves of o's engine.
func NewLinear(o *ops.Ops, inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	w, err := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	if err != nil {
		return nil, errors.WithMessage(err, "linear weight")
	}
	b, err := tensor.Zeros(tensor.Shape{outFeatures})
	if err != nil {
		return nil, errors.WithMessage(err, "linear bias")
	}

	l := &Linear{
		module:      NewModule[*tensor.Tensor]("Linear"),
		ops:         o,
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", o.Leaf(w, true)),
		bias:        NewParameter("bias", o.Leaf(b, true)),
	}
	for _, err := range []error{
		l.module.RegisterParameter("weight", l.weight),
		l.module.RegisterParameter("bias", l.bias),
		l.module.SetData("in_features", inFeatures),
		l.module.SetData("out_features", outFeatures),
	} {
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Forward computes x @ W.T + b for x of shape [batch_size, in_features].
func (l *Linear) Forward(x *ops.Var) (*ops.Var, error) {
	shape := x.Data().Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "Linear.Forward: expected input [batch, %d], got %v",
			l.inFeatures, shape)
	}
	wT, err := l.ops.Transpose(l.weight.Value(), 0, 1)
	if err != nil {
		return nil, err
	}
	out, err := l.ops.MatMul(x, wT)
	if err != nil {
		return nil, err
	}
	return l.ops.Add(out, l.bias.Value())
}

// Module implements Layer.
func (l *Linear) Module() *Module[*tensor.Tensor] {
	return l.module
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter[*tensor.Tensor] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter[*tensor.Tensor] {
	return l.bias
}
