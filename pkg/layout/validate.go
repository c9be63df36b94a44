package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/astview/pkg/tree"
)

// ErrInconsistent is returned by [Engine.Validate] when a laid-out tree
// breaks a geometric invariant.
var ErrInconsistent = errors.New("inconsistent layout")

const epsilon = 1e-9

// Validate checks the last layout of the tree rooted at root: every
// expanded node is at least as wide as its laid-out children, the children
// tile contiguously in order inside the parent's slot, and each level sits
// one row below its parent.
func (e *Engine[T]) Validate(root *tree.Node[T]) error {
	var err error
	e.walk(root, func(n *tree.Node[T]) bool {
		err = e.check(n)
		return err == nil
	})
	return err
}

func (e *Engine[T]) check(n *tree.Node[T]) error {
	own := max(n.Intrinsic, e.opts.MinWidth)
	if !e.expanded(n) {
		if !near(n.Width, own) {
			return inconsistent(n, "width %g, want own width %g", n.Width, own)
		}
		return nil
	}

	kids := n.Children()
	var sum float64
	for _, c := range kids {
		sum += c.Width
	}
	if n.Width+epsilon < sum || n.Width+epsilon < own {
		return inconsistent(n, "width %g narrower than children %g or label %g", n.Width, sum, own)
	}
	cursor := kids[0].X
	if cursor+epsilon < n.X || cursor+sum > n.X+n.Width+epsilon {
		return inconsistent(n, "children span [%g,%g] outside slot [%g,%g]", cursor, cursor+sum, n.X, n.X+n.Width)
	}
	for i, c := range kids {
		if !near(c.X, cursor) {
			return inconsistent(c, "child %d at x %g, want %g", i, c.X, cursor)
		}
		if !near(c.Y, n.Y+e.opts.RowHeight) {
			return inconsistent(c, "y %g, want %g", c.Y, n.Y+e.opts.RowHeight)
		}
		cursor += c.Width
	}
	return nil
}

func inconsistent[T any](n *tree.Node[T], format string, args ...any) error {
	return fmt.Errorf("%w: node %s: %s", ErrInconsistent, n.ID(), fmt.Sprintf(format, args...))
}

func near(a, b float64) bool { return math.Abs(a-b) <= epsilon }
