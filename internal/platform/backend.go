package platform

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/1broseidon/pm/internal/geometry"
)

// WindowID is a display-server window handle. Zero is the invalid sentinel.
type WindowID uint32

// Atom is a server-assigned identifier for an interned name.
type Atom uint32

// VisualID identifies a pixel format on the screen.
type VisualID uint32

// ErrClosed is returned by NextEvent once the connection has been closed.
var ErrClosed = errors.New("display connection closed")

// Mode selects which drawing context a canvas owns.
type Mode int

const (
	// Mode2D uses a core graphics context and a server font.
	Mode2D Mode = iota
	// ModeAccelerated uses a GLX rendering context.
	ModeAccelerated
)

func (m Mode) String() string {
	switch m {
	case Mode2D:
		return "2d"
	case ModeAccelerated:
		return "gl"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "2d" and "gl" (or "accelerated").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "2d":
		return Mode2D, nil
	case "gl", "accelerated":
		return ModeAccelerated, nil
	default:
		return Mode2D, fmt.Errorf("unknown render mode %q (want 2d or gl)", s)
	}
}

// Screen holds the metrics of the default screen, read once per connection.
type Screen struct {
	Number     int
	Width      int
	Height     int
	Root       WindowID
	RootDepth  uint8
	RootVisual VisualID
	BlackPixel uint32
	WhitePixel uint32
}

// Box returns the screen bounds at the origin.
func (s Screen) Box() geometry.Box {
	return geometry.NewBox(0, 0, s.Width, s.Height)
}

// Visual is the pixel format a window is created with.
type Visual struct {
	ID             VisualID
	Depth          uint8
	Class          uint8
	DoubleBuffered bool
}

// EventMask mirrors the core protocol event selection bits.
type EventMask uint32

const (
	MaskKeyPress         EventMask = 1 << 0
	MaskKeyRelease       EventMask = 1 << 1
	MaskButtonPress      EventMask = 1 << 2
	MaskButtonRelease    EventMask = 1 << 3
	MaskEnterWindow      EventMask = 1 << 4
	MaskLeaveWindow      EventMask = 1 << 5
	MaskPointerMotion    EventMask = 1 << 6
	MaskExposure         EventMask = 1 << 15
	MaskVisibilityChange EventMask = 1 << 16
	MaskStructureNotify  EventMask = 1 << 17
	MaskFocusChange      EventMask = 1 << 21
	MaskPropertyChange   EventMask = 1 << 22
	MaskColormapChange   EventMask = 1 << 23

	// MaskCanvas is every class a canvas window listens to.
	MaskCanvas = MaskKeyPress | MaskKeyRelease |
		MaskButtonPress | MaskButtonRelease | MaskPointerMotion |
		MaskEnterWindow | MaskLeaveWindow |
		MaskExposure | MaskVisibilityChange | MaskStructureNotify |
		MaskFocusChange | MaskPropertyChange | MaskColormapChange
)

// WindowSpec describes a top-level window to create.
type WindowSpec struct {
	Box        geometry.Box
	Visual     Visual
	Background uint32
	Border     uint32
	EventMask  EventMask
}

// GCSpec describes a 2-D drawing context.
type GCSpec struct {
	Font       string
	Foreground uint32
	Background uint32
}

// DrawingContext is a graphics context bound to a window, plus the font it
// draws with.
type DrawingContext struct {
	GC   uint32
	Font uint32
}

// RenderContext is an accelerated rendering context made current on a window.
type RenderContext struct {
	ID             uint32
	Tag            uint32
	DoubleBuffered bool
	GLVersion      string
}

// Display is a live connection to the display server. Implementations are
// not safe for concurrent use, with one exception: NextEvent may block on
// one goroutine while requests are issued from another.
type Display interface {
	Screen() Screen
	ChooseVisual(mode Mode) (Visual, error)
	AllocColor(c color.Color) (uint32, error)

	CreateWindow(spec WindowSpec) (WindowID, error)
	MapWindow(win WindowID) error
	UnmapWindow(win WindowID) error
	SetTitle(win WindowID, title string) error

	InternAtom(name string) (Atom, error)
	SetProtocols(win WindowID, protocols []Atom) error
	SendClientMessage(win WindowID, msgType Atom, data [5]uint32) error

	CreateDrawingContext(win WindowID, spec GCSpec) (DrawingContext, error)
	SetColors(dc DrawingContext, fg, bg uint32) error
	DrawText(win WindowID, dc DrawingContext, x, y int, text string) error
	FreeDrawingContext(dc DrawingContext)

	CreateRenderContext(win WindowID, vis Visual) (RenderContext, error)
	ClearRender(win WindowID, rc RenderContext, rgba [4]float32) error
	DestroyRenderContext(rc RenderContext)

	Flush() error
	NextEvent() (Event, error)
	Close()
}

// Dialer opens a Display for a connection identifier.
type Dialer func(display string) (Display, error)
