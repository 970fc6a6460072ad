package nn

import (
	"github.com/born-ml/minitorch/internal/autodiff/ops"
	"github.com/born-ml/minitorch/internal/tensor"
	"github.com/pkg/errors"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// The result is a rank-0 tensor Value ready for Backward.
func MSELoss(o *ops.Ops, predictions, targets *ops.Var) (*ops.Var, error) {
	shape := predictions.Data().Shape()
	if !shape.Equal(targets.Data().Shape()) {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "MSELoss: predictions %v and targets %v", shape,
			targets.Data().Shape())
	}
	diff, err := o.Sub(predictions, targets)
	if err != nil {
		return nil, err
	}
	squared, err := o.Mul(diff, diff)
	if err != nil {
		return nil, err
	}
	sum, err := o.SumAll(squared)
	if err != nil {
		return nil, err
	}
	return o.Mul(sum, o.Constant(tensor.Scalar(1/float64(shape.NumElements()))))
}
