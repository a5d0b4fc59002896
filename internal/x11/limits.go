package x11

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned instead of truncating a value that does not fit
// its protocol field.
var ErrOutOfRange = errors.New("value does not fit the protocol field")

func wireCoord(field string, v int) (int16, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, fmt.Errorf("%s %d: %w", field, v, ErrOutOfRange)
	}
	return int16(v), nil
}

func wireSize(field string, v int) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%s %d: %w", field, v, ErrOutOfRange)
	}
	return uint16(v), nil
}

// wireGeometry converts a window position and size, rejecting anything the
// CreateWindow request would truncate.
func wireGeometry(x, y, width, height int) (int16, int16, uint16, uint16, error) {
	wx, err := wireCoord("x", x)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	wy, err := wireCoord("y", y)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	ww, err := wireSize("width", width)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	wh, err := wireSize("height", height)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return wx, wy, ww, wh, nil
}
