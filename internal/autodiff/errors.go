package autodiff

import "github.com/pkg/errors"

// Common errors.
//
// ErrGraphConsistency, ErrGraphCycle, ErrMissingContext, ErrArity and
// ErrOperationPanic signal a bug in graph construction or in a Function
// implementation: they are fatal for the training step (see IsFatal).
var (
	ErrGraphConsistency  = errors.New("graph consistency violation")
	ErrGraphCycle        = errors.New("cycle in computation graph")
	ErrMissingContext    = errors.New("backward read a value not saved by forward")
	ErrArity             = errors.New("backward returned wrong number of gradients")
	ErrOperationPanic    = errors.New("operation panicked")
	ErrNoGradient        = errors.New("no gradient available")
	ErrNotDifferentiable = errors.New("value does not require grad")
)

// IsFatal reports whether err is an internal-consistency failure that must
// abort the current training step, as opposed to a caller input error such
// as a shape mismatch.
func IsFatal(err error) bool {
	for _, target := range []error{ErrGraphConsistency, ErrGraphCycle, ErrMissingContext, ErrArity, ErrOperationPanic} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
