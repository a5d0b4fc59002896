package canvas

import (
	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/x11"
)

// Center opens a short-lived connection and returns the middle of the
// default screen. Odd dimensions round down: a 1921x1081 screen gives
// (960, 540).
func Center(dial platform.Dialer, display string) (geometry.Point, error) {
	id := x11.ResolveDisplay(display)
	d, err := dial(id)
	if err != nil {
		return geometry.Point{}, connectionFailed(id, err)
	}
	if d == nil {
		return geometry.Point{}, connectionFailed(id, errNoDisplay)
	}
	defer d.Close()

	return d.Screen().Box().Center(), nil
}
