package scene

import "github.com/1broseidon/pm/internal/geometry"

// Label is a single line of text anchored at a baseline position.
type Label struct {
	Text string
	At   geometry.Point
}

// Draw implements Drawable.
func (l Label) Draw(s Surface) error {
	if l.Text == "" {
		return nil
	}
	return s.DrawText(l.Text, l.At.X, l.At.Y)
}
