// Package geometry holds the integer points and rectangles used to place
// windows and text.
package geometry

// Point is a position in window or screen coordinates.
type Point struct {
	X int
	Y int
}

// Box describes a rectangle from its origin and size and exposes its four
// corners:
//
//	TopLeft ─► ┌─────────────┐ ◄─ TopRight
//	           │ ↖           │
//	           │  x,y        │
//	           │             │
//	BottomLeft └─────────────┘ ◄─ BottomRight
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewBox builds a box at (x, y). Negative sizes are clamped to zero.
func NewBox(x, y, width, height int) Box {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Box{X: x, Y: y, Width: width, Height: height}
}

func (b Box) TopLeft() Point     { return Point{X: b.X, Y: b.Y} }
func (b Box) TopRight() Point    { return Point{X: b.X + b.Width, Y: b.Y} }
func (b Box) BottomLeft() Point  { return Point{X: b.X, Y: b.Y + b.Height} }
func (b Box) BottomRight() Point { return Point{X: b.X + b.Width, Y: b.Y + b.Height} }

// Center returns the midpoint of the box using integer division, so odd
// sizes round toward the origin.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// CenteredAt returns a box of the same size whose center is p.
func (b Box) CenteredAt(p Point) Box {
	return Box{X: p.X - b.Width/2, Y: p.Y - b.Height/2, Width: b.Width, Height: b.Height}
}
