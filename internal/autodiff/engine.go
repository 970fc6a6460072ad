// Package autodiff implements reverse-mode automatic differentiation over a
// dynamically built computation graph.
//
// Architecture:
//   - Value: graph node holding a payload, a unique ID and the History that produced it
//   - Function: stateless forward/backward pair; per-call state lives in a Context
//   - Engine: applies Functions (recording History) and runs Backward
//   - Backward: topological sort from the root, then chain-rule accumulation
//     into a map from Value ID to pending gradient
//
// The engine is generic over the payload type. Scalars use float64
// (package scalar); tensors use *tensor.Tensor (package ops). How a Function
// computes its kernels (sequentially, in parallel) is invisible here.
//
// Usage:
//
//	engine := autodiff.NewEngine[float64](scalar.Algebra{})
//	x := engine.Leaf(3, true)
//	y, _ := engine.Apply(scalar.MulFn{}, x, x) // y = x²
//	_ = engine.Backward(y)
//	dx, _ := x.Derivative() // 6
package autodiff

import (
	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Algebra provides the arithmetic the engine needs on payloads.
type Algebra[P any] interface {
	// Add returns a + b without modifying either.
	Add(a, b P) (P, error)
	// OnesLike returns a payload of ones shaped like v, the default Backward seed.
	OnesLike(v P) P
	// Compatible returns an error unless a gradient shaped like grad can
	// stand for the derivative of a payload shaped like v.
	Compatible(v, grad P) error
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	retainGraph bool
}

// WithRetainGraph keeps every Context alive after Backward so the same graph
// can be differentiated again. By default contexts are released once the
// backward pass completes.
func WithRetainGraph(retain bool) Option {
	return func(o *options) {
		o.retainGraph = retain
	}
}

// Engine records operations on Values and back-propagates through them.
//
// An Engine is not safe for concurrent use: graph construction and
// backpropagation are single-threaded. Parallelism belongs inside Function
// kernels.
type Engine[P any] struct {
	id      uuid.UUID
	algebra Algebra[P]
	opts    options
}

// NewEngine creates an Engine over the given payload algebra.
func NewEngine[P any](algebra Algebra[P], opts ...Option) *Engine[P] {
	e := &Engine[P]{
		id:      uuid.New(),
		algebra: algebra,
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	klog.V(2).Infof("autodiff[%s]: new engine (retainGraph=%v)", e.id, e.opts.retainGraph)
	return e
}

// ID returns the engine identifier used in logs.
func (e *Engine[P]) ID() uuid.UUID {
	return e.id
}

// Algebra returns the payload algebra.
func (e *Engine[P]) Algebra() Algebra[P] {
	return e.algebra
}

// Leaf creates a leaf Value (see NewLeaf).
func (e *Engine[P]) Leaf(data P, requiresGrad bool) *Value[P] {
	return NewLeaf(data, requiresGrad)
}

// Constant creates a leaf Value that never receives gradients.
func (e *Engine[P]) Constant(data P) *Value[P] {
	return NewLeaf(data, false)
}

// Apply runs fn.Forward on the inputs' payloads and returns the output Value.
//
// If any input requires grad, the output records History (fn, a fresh
// Context, inputs) and requires grad itself. Otherwise the output is a
// constant and the graph does not grow.
func (e *Engine[P]) Apply(fn Function[P], inputs ...*Value[P]) (*Value[P], error) {
	need := false
	data := make([]P, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, errors.Errorf("%s: input %d is nil", fn.Name(), i)
		}
		data[i] = in.data
		need = need || in.requiresGrad
	}

	ctx := newContext[P](!need)
	var out P
	var err error
	if exc := exceptions.TryCatch[any](func() { out, err = fn.Forward(ctx, data...) }); exc != nil {
		return nil, errors.Wrapf(ErrOperationPanic, "%s forward with %d inputs: %v", fn.Name(), len(inputs), exc)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "%s forward", fn.Name())
	}

	v := NewLeaf(out, need)
	if need {
		v.history = &History[P]{
			Function: fn,
			Context:  ctx,
			Inputs:   append([]*Value[P](nil), inputs...),
		}
	}
	return v, nil
}

// Backward back-propagates from root seeded with ones shaped like root's
// payload. After it returns, every leaf that requires grad and is reachable
// from root holds ∂root/∂leaf in its derivative slot (added to any
// derivative already there).
func (e *Engine[P]) Backward(root *Value[P]) error {
	return e.BackwardWithSeed(root, e.algebra.OnesLike(root.data))
}

// BackwardWithSeed back-propagates from root with an explicit seed gradient.
//
// Errors satisfying IsFatal mean the graph or a Function implementation is
// broken; the training step must be aborted. Panics raised by Function code
// are returned as ErrOperationPanic instead of crashing the caller.
func (e *Engine[P]) BackwardWithSeed(root *Value[P], seed P) error {
	if root.IsConstant() {
		return errors.Wrapf(ErrNotDifferentiable, "backward from value %d", root.id)
	}
	if err := e.algebra.Compatible(root.data, seed); err != nil {
		return errors.WithMessagef(err, "seed for value %d", root.id)
	}

	var err error
	exc := exceptions.TryCatch[any](func() {
		err = e.backward(root, seed)
	})
	if exc != nil {
		return errors.Wrapf(ErrOperationPanic, "backward from value %d: %v", root.id, exc)
	}
	return err
}

// backward is the accumulation loop:
//
//	seed root → pop next Value in topological order → check it received all
//	consumer contributions → leaf: accumulate into derivative; otherwise call
//	Backward and add each input gradient into that input's pending slot.
func (e *Engine[P]) backward(root *Value[P], seed P) error {
	order, consumers, err := sortGraph(root)
	if err != nil {
		return err
	}

	pending := map[ID]P{root.id: seed}
	received := make(map[ID]int, len(order))

	for _, v := range order {
		grad, ok := pending[v.id]
		if !ok || received[v.id] != consumers[v.id] {
			return errors.Wrapf(ErrGraphConsistency, "value %d processed after %d of %d consumer contributions",
				v.id, received[v.id], consumers[v.id])
		}
		delete(pending, v.id)

		if v.IsLeaf() || v.retainGrad {
			if err := v.accumulate(e.algebra, grad); err != nil {
				return err
			}
		}
		if v.IsLeaf() {
			continue
		}

		h := v.history
		if h.Context.released {
			return errors.Wrapf(ErrMissingContext, "%s (value %d): graph already released by a previous backward pass, use WithRetainGraph",
				h.Function.Name(), v.id)
		}
		grads, err := h.Function.Backward(h.Context, grad)
		if err != nil {
			return errors.WithMessagef(err, "%s backward (value %d)", h.Function.Name(), v.id)
		}
		if len(grads) != len(h.Inputs) {
			return errors.Wrapf(ErrArity, "%s returned %d gradients for %d inputs", h.Function.Name(), len(grads), len(h.Inputs))
		}
		if klog.V(3).Enabled() {
			klog.Infof("autodiff[%s]: %s (value %d) -> %d input gradients", e.id, h.Function.Name(), v.id, len(grads))
		}

		for i, in := range h.Inputs {
			if in.IsConstant() {
				continue
			}
			if err := e.algebra.Compatible(in.data, grads[i]); err != nil {
				return errors.WithMessagef(err, "%s gradient for input %d (value %d)", h.Function.Name(), i, in.id)
			}
			if prev, ok := pending[in.id]; ok {
				sum, err := e.algebra.Add(prev, grads[i])
				if err != nil {
					return errors.WithMessagef(err, "accumulating gradient of value %d from %s", in.id, h.Function.Name())
				}
				pending[in.id] = sum
			} else {
				pending[in.id] = grads[i]
			}
			received[in.id]++
		}
	}

	if !e.opts.retainGraph {
		for _, v := range order {
			if !v.IsLeaf() {
				v.history.Context.release()
			}
		}
	}
	klog.V(1).Infof("autodiff[%s]: backward from value %d through %d values", e.id, root.id, len(order))
	return nil
}
