package autodiff

import (
	"slices"

	"github.com/pkg/errors"
)

// visit states for the depth-first traversal.
const (
	unvisited = iota
	inProgress
	finished
)

// TopologicalSort returns every Value reachable from root through History
// edges that requires grad, ordered so that each consumer comes before all
// of the Values it was computed from. root is first.
//
// A Value shared by several consumers (diamond dependency) appears once,
// after all of them. Construction is append-only so graphs are acyclic; a
// cycle is still detected and reported as ErrGraphCycle instead of looping.
func TopologicalSort[P any](root *Value[P]) ([]*Value[P], error) {
	order, _, err := sortGraph(root)
	return order, err
}

// sortGraph returns the topological order plus, for each Value in it, the
// number of History edges consuming it within the graph. Backward uses the
// counts to verify that a Value received every contribution before it is
// processed.
//
// It is an iterative post-order DFS, reversed, so deep graphs (long chains
// of operations) do not grow the goroutine stack.
func sortGraph[P any](root *Value[P]) ([]*Value[P], map[ID]int, error) {
	if root.IsConstant() {
		return nil, nil, nil
	}

	type frame struct {
		v    *Value[P]
		next int // next input to visit
	}

	state := map[ID]int{root.id: inProgress}
	consumers := make(map[ID]int)
	var post []*Value[P]
	stack := []frame{{v: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		inputs := top.v.Inputs()
		if top.next < len(inputs) {
			in := inputs[top.next]
			top.next++
			if in.IsConstant() {
				continue
			}
			consumers[in.id]++
			switch state[in.id] {
			case inProgress:
				return nil, nil, errors.Wrapf(ErrGraphCycle, "value %d reached again while its inputs are being visited", in.id)
			case finished:
				continue
			}
			state[in.id] = inProgress
			stack = append(stack, frame{v: in})
			continue
		}

		state[top.v.id] = finished
		post = append(post, top.v)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(post)
	return post, consumers, nil
}
