package platform

import (
	"errors"
	"fmt"
	"math"

	"github.com/1broseidon/pm/internal/geometry"
)

// Positions travel as signed 16-bit and sizes as unsigned 16-bit values on
// the wire.
const (
	MinCoord = math.MinInt16
	MaxCoord = math.MaxInt16
	MaxSize  = math.MaxUint16
)

// ErrOutOfRange is returned for positions and sizes the display protocol
// cannot carry.
var ErrOutOfRange = errors.New("outside the display protocol range")

// CheckCoord reports whether v fits a protocol coordinate.
func CheckCoord(v int) error {
	if v < MinCoord || v > MaxCoord {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, v, MinCoord, MaxCoord)
	}
	return nil
}

// CheckSize reports whether v fits a protocol width or height.
func CheckSize(v int) error {
	if v < 0 || v > MaxSize {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, v, MaxSize)
	}
	return nil
}

// CheckPoint reports whether p can be sent as a drawing position.
func CheckPoint(p geometry.Point) error {
	if err := CheckCoord(p.X); err != nil {
		return fmt.Errorf("x: %w", err)
	}
	if err := CheckCoord(p.Y); err != nil {
		return fmt.Errorf("y: %w", err)
	}
	return nil
}

// CheckBox reports whether b can be sent as window geometry.
func CheckBox(b geometry.Box) error {
	if err := CheckPoint(b.TopLeft()); err != nil {
		return err
	}
	if err := CheckSize(b.Width); err != nil {
		return fmt.Errorf("width: %w", err)
	}
	if err := CheckSize(b.Height); err != nil {
		return fmt.Errorf("height: %w", err)
	}
	return nil
}
