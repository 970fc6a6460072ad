package autodiff

import "github.com/pkg/errors"

// Context is the scratch space of one Function invocation: Forward saves
// what Backward will need, Backward reads it back.
//
// A Context belongs to exactly one History edge. After Backward completes
// (without WithRetainGraph) the engine releases it, and any later read fails
// with ErrMissingContext.
type Context[P any] struct {
	noGrad   bool
	released bool
	saved    []P
	aux      []any
}

func newContext[P any](noGrad bool) *Context[P] {
	return &Context[P]{noGrad: noGrad}
}

// NoGrad is true when no input requires grad: Backward will never be called
// and Forward may skip saving.
func (c *Context[P]) NoGrad() bool {
	return c.noGrad
}

// SaveForBackward appends payload values for Backward.
func (c *Context[P]) SaveForBackward(values ...P) {
	c.saved = append(c.saved, values...)
}

// SaveAux appends non-payload data (axes, shapes, flags) for Backward.
func (c *Context[P]) SaveAux(values ...any) {
	c.aux = append(c.aux, values...)
}

// SavedValues returns all values saved by SaveForBackward, in order.
func (c *Context[P]) SavedValues() ([]P, error) {
	if c.released {
		return nil, errors.Wrap(ErrMissingContext, "context already released by a previous backward pass")
	}
	return c.saved, nil
}

// Saved returns the i-th value saved by SaveForBackward.
func (c *Context[P]) Saved(i int) (P, error) {
	var zero P
	if c.released {
		return zero, errors.Wrap(ErrMissingContext, "context already released by a previous backward pass")
	}
	if i < 0 || i >= len(c.saved) {
		return zero, errors.Wrapf(ErrMissingContext, "saved value %d requested, %d saved", i, len(c.saved))
	}
	return c.saved[i], nil
}

// Aux returns the i-th value saved by SaveAux.
func (c *Context[P]) Aux(i int) (any, error) {
	if c.released {
		return nil, errors.Wrap(ErrMissingContext, "context already released by a previous backward pass")
	}
	if i < 0 || i >= len(c.aux) {
		return nil, errors.Wrapf(ErrMissingContext, "aux value %d requested, %d saved", i, len(c.aux))
	}
	return c.aux[i], nil
}

// AuxAs returns the i-th aux value converted to T.
func AuxAs[T, P any](c *Context[P], i int) (T, error) {
	var zero T
	v, err := c.Aux(i)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrMissingContext, "aux value %d has type %T, want %T", i, v, zero)
	}
	return t, nil
}

// Released reports whether the context was freed after a backward pass.
func (c *Context[P]) Released() bool {
	return c.released
}

func (c *Context[P]) release() {
	c.released = true
	c.saved = nil
	c.aux = nil
}
