package scene

import (
	"fmt"

	"github.com/1broseidon/pm/internal/geometry"
)

// Surface is what drawables render onto.
type Surface interface {
	DrawText(text string, x, y int) error
}

// Drawable is anything that can render itself onto a Surface.
type Drawable interface {
	Draw(s Surface) error
}

// Node is a scene tree node. It owns its geometry, an opaque state payload
// and an ordered list of children which are drawn in insertion order.
type Node[T any] struct {
	Box      geometry.Box
	State    T
	children []Drawable
}

// NewNode creates a node covering box with the given state.
func NewNode[T any](box geometry.Box, state T) *Node[T] {
	return &Node[T]{Box: box, State: state}
}

// Add appends a child. Nil drawables are ignored.
func (n *Node[T]) Add(d Drawable) {
	if d == nil {
		return
	}
	n.children = append(n.children, d)
}

// Children returns a copy of the child list.
func (n *Node[T]) Children() []Drawable {
	out := make([]Drawable, len(n.children))
	copy(out, n.children)
	return out
}

// Draw renders every child onto s, stopping at the first failure.
func (n *Node[T]) Draw(s Surface) error {
	for i, child := range n.children {
		if err := child.Draw(s); err != nil {
			return fmt.Errorf("draw child %d: %w", i, err)
		}
	}
	return nil
}
