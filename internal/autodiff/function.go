package autodiff

// Function is a differentiable operation: a pairing of a forward rule and
// its backward (gradient) rule.
//
// Implementations keep no per-call state: everything Backward needs must be
// stored in the Context during Forward. Configuration fixed at construction
// (an axis, a kernel backend) is fine.
//
// Example for Mul:
//
//	Forward(ctx, 3, 4)  -> 12, saves (3, 4)
//	Backward(ctx, 1)    -> [4, 3]
type Function[P any] interface {
	// Name identifies the operation in errors and logs.
	Name() string

	// Forward computes the output payload from the input payloads.
	Forward(ctx *Context[P], inputs ...P) (P, error)

	// Backward receives the gradient of the root with respect to the output
	// and returns, for each input in order, its local derivative already
	// multiplied by grad (the chain rule applied at this call site).
	// It must return exactly one gradient per input, with the input's shape.
	Backward(ctx *Context[P], grad P) ([]P, error)
}

// History is the edge recorded when a Function produced a Value: the
// function, its Context and the input Values. It is owned by the output
// Value; the same input Value may appear in many Histories, which is what
// makes the graph a DAG rather than a tree.
type History[P any] struct {
	Function Function[P]
	Context  *Context[P]
	Inputs   []*Value[P]
}
