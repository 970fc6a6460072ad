package autodiff

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ID identifies a Value independently of its payload: two Values holding
// equal numbers are still distinct graph nodes.
type ID int64

var lastID atomic.Int64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Value is a node of the computation graph.
//
// A Value without History is a leaf (a user input or parameter). Leaves that
// require grad receive accumulated derivatives during Backward; intermediate
// Values only forward their gradient to their inputs, unless RetainGrad was
// called on them.
//
// Type parameter P is the payload: float64 for scalars, *tensor.Tensor for tensors.
type Value[P any] struct {
	id           ID
	data         P
	history      *History[P]
	requiresGrad bool
	retainGrad   bool

	derivative    P
	hasDerivative bool
}

// NewLeaf creates a leaf Value. When requiresGrad is false the Value is a
// constant: it takes part in forward computations but no gradient flows to it.
func NewLeaf[P any](data P, requiresGrad bool) *Value[P] {
	return &Value[P]{
		id:           nextID(),
		data:         data,
		requiresGrad: requiresGrad,
	}
}

// ID returns the Value's unique identifier.
func (v *Value[P]) ID() ID {
	return v.id
}

// Data returns the payload.
func (v *Value[P]) Data() P {
	return v.data
}

// SetData replaces the payload of a leaf, e.g. after an optimizer step.
// Intermediate values are derived from their inputs and cannot be set.
func (v *Value[P]) SetData(data P) error {
	if !v.IsLeaf() {
		return errors.Errorf("SetData on non-leaf value %d produced by %s", v.id, v.history.Function.Name())
	}
	v.data = data
	return nil
}

// History returns the edge that produced this Value, or nil for leaves.
func (v *Value[P]) History() *History[P] {
	return v.history
}

// IsLeaf returns true if the Value was not produced by an operation.
func (v *Value[P]) IsLeaf() bool {
	return v.history == nil
}

// RequiresGrad returns true if gradients flow to this Value.
func (v *Value[P]) RequiresGrad() bool {
	return v.requiresGrad
}

// IsConstant is the negation of RequiresGrad.
func (v *Value[P]) IsConstant() bool {
	return !v.requiresGrad
}

// Inputs returns the Values this one was computed from (nil for leaves).
func (v *Value[P]) Inputs() []*Value[P] {
	if v.history == nil {
		return nil
	}
	return v.history.Inputs
}

// RetainGrad makes Backward store the derivative of this non-leaf Value too.
// It has no effect on leaves, which always store theirs.
func (v *Value[P]) RetainGrad() *Value[P] {
	v.retainGrad = true
	return v
}

// Derivative returns the accumulated derivative of the last Backward root
// with respect to v. It returns ErrNoGradient if no derivative was stored,
// distinguishing "never computed" from "computed as zero".
func (v *Value[P]) Derivative() (P, error) {
	if !v.hasDerivative {
		var zero P
		return zero, errors.Wrapf(ErrNoGradient, "value %d", v.id)
	}
	return v.derivative, nil
}

// HasDerivative returns true if a derivative has been accumulated.
func (v *Value[P]) HasDerivative() bool {
	return v.hasDerivative
}

// ZeroGrad resets the derivative to "not computed". Call it on parameters
// before each training step, otherwise derivatives accumulate across steps.
func (v *Value[P]) ZeroGrad() {
	var zero P
	v.derivative = zero
	v.hasDerivative = false
}

// Detach returns a new constant leaf sharing v's payload. Gradients do not
// flow through the returned Value.
func (v *Value[P]) Detach() *Value[P] {
	return NewLeaf(v.data, false)
}

// accumulate adds grad into the derivative slot.
func (v *Value[P]) accumulate(algebra Algebra[P], grad P) error {
	if !v.hasDerivative {
		v.derivative = grad
		v.hasDerivative = true
		return nil
	}
	sum, err := algebra.Add(v.derivative, grad)
	if err != nil {
		return errors.WithMessagef(err, "accumulating derivative of value %d", v.id)
	}
	v.derivative = sum
	return nil
}

// String implements fmt.Stringer.
func (v *Value[P]) String() string {
	if v.history == nil {
		return fmt.Sprintf("Value(id=%d, leaf, data=%v)", v.id, v.data)
	}
	return fmt.Sprintf("Value(id=%d, %s, data=%v)", v.id, v.history.Function.Name(), v.data)
}
