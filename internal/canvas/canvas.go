// Package canvas owns a single native window and the resources drawn into it.
//
// A Canvas moves through Created, Open, Running and Closed. Every resource it
// holds is released by Close in reverse dependency order: the window is
// unmapped, the render or drawing context is freed and the display
// connection is closed last.
package canvas

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/scene"
	"github.com/1broseidon/pm/internal/x11"
)

// DefaultFont is opened for 2-D text when Options.Font is empty.
const DefaultFont = "fixed"

// Atom names used for the window manager close protocol.
const (
	atomWMProtocols    = "WM_PROTOCOLS"
	atomWMDeleteWindow = "WM_DELETE_WINDOW"
)

// State is the metadata held by the canvas scene node. The atoms are zero
// until Open.
type State struct {
	ScreenWidth    int
	ScreenHeight   int
	WMProtocols    platform.Atom
	WMDeleteWindow platform.Atom
}

// Options configures New.
type Options struct {
	// Display is the connection identifier. Empty means $DISPLAY, then ":0".
	Display string
	// Box is the window geometry. A zero width or height takes the screen's.
	Box geometry.Box
	Mode platform.Mode
	// Title, when set, is applied right after the window is created.
	Title string
	// Foreground and Background default to the screen's black and white pixels.
	Foreground color.Color
	Background color.Color
	Font       string
	Logger     *slog.Logger
	// OnEvent receives every event that is not a close request.
	OnEvent func(platform.Event)
	// TextRenderer draws text in accelerated mode.
	TextRenderer TextRenderer
}

type phase int

const (
	phaseCreated phase = iota
	phaseOpen
	phaseRunning
	phaseClosed
)

func (p phase) String() string {
	switch p {
	case phaseCreated:
		return "created"
	case phaseOpen:
		return "open"
	case phaseRunning:
		return "running"
	case phaseClosed:
		return "closed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Canvas is a window plus the context used to draw into it. It is not safe
// for concurrent use; other goroutines reach a running canvas through Do.
type Canvas struct {
	display platform.Display
	id      string
	mode    platform.Mode
	screen  platform.Screen
	visual  platform.Visual
	window  platform.WindowID
	dc      *platform.DrawingContext
	rc      *platform.RenderContext
	node    *scene.Node[State]

	fg, bg     uint32
	clearColor [4]float32
	mapped     bool
	phase      phase

	logger       *slog.Logger
	onEvent      func(platform.Event)
	textRenderer TextRenderer
	warnedText   bool

	events   chan pumped
	stop     chan struct{}
	pumpOnce sync.Once

	loopMu sync.Mutex
	loop   *loopHandle
	looped bool
	closed atomic.Bool
}

// New connects to the display and acquires the window and its drawing
// context. Either every resource is acquired or none is.
func New(dial platform.Dialer, opts Options) (*Canvas, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := x11.ResolveDisplay(opts.Display)

	display, err := dial(id)
	if err != nil {
		return nil, connectionFailed(id, err)
	}
	if display == nil {
		return nil, connectionFailed(id, errNoDisplay)
	}

	c := &Canvas{
		display:      display,
		id:           id,
		mode:         opts.Mode,
		logger:       logger.With("component", "canvas", "display", id),
		onEvent:      opts.OnEvent,
		textRenderer: opts.TextRenderer,
		events:       make(chan pumped),
		stop:         make(chan struct{}),
	}
	if err := c.acquire(opts); err != nil {
		c.release()
		return nil, err
	}

	if opts.Title != "" {
		if err := c.display.SetTitle(c.window, opts.Title); err != nil {
			c.release()
			return nil, fmt.Errorf("set title: %w", err)
		}
	}

	c.logger.Debug("canvas created",
		"window", c.window,
		"mode", c.mode.String(),
		"box", fmt.Sprintf("%dx%d+%d+%d", c.node.Box.Width, c.node.Box.Height, c.node.Box.X, c.node.Box.Y),
		"visual", fmt.Sprintf("0x%x", uint32(c.visual.ID)),
	)
	return c, nil
}

// acquire runs the construction steps in order. On failure the handles
// acquired so far are left set for release.
func (c *Canvas) acquire(opts Options) error {
	c.screen = c.display.Screen()

	vis, err := c.display.ChooseVisual(c.mode)
	if err != nil {
		return fmt.Errorf("%w for %s mode: %w", ErrNoMatchingVisual, c.mode, err)
	}
	c.visual = vis

	c.fg, c.bg = c.screen.BlackPixel, c.screen.WhitePixel
	if c.mode == platform.Mode2D {
		if opts.Foreground != nil {
			if c.fg, err = c.display.AllocColor(opts.Foreground); err != nil {
				return fmt.Errorf("%w: allocate foreground: %w", ErrContextCreationFailed, err)
			}
		}
		if opts.Background != nil {
			if c.bg, err = c.display.AllocColor(opts.Background); err != nil {
				return fmt.Errorf("%w: allocate background: %w", ErrContextCreationFailed, err)
			}
		}
	}
	c.clearColor = clearColor(opts.Background)

	box := windowBox(opts.Box, c.screen)
	if err := platform.CheckBox(box); err != nil {
		return fmt.Errorf("%w: %w", ErrWindowCreationFailed, err)
	}
	win, err := c.display.CreateWindow(platform.WindowSpec{
		Box:        box,
		Visual:     vis,
		Background: c.bg,
		Border:     c.fg,
		EventMask:  platform.MaskCanvas,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWindowCreationFailed, err)
	}
	if win == 0 {
		return fmt.Errorf("%w: server returned the null window", ErrWindowCreationFailed)
	}
	c.window = win

	switch c.mode {
	case platform.Mode2D:
		font := opts.Font
		if font == "" {
			font = DefaultFont
		}
		dc, err := c.display.CreateDrawingContext(win, platform.GCSpec{
			Font:       font,
			Foreground: c.fg,
			Background: c.bg,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrContextCreationFailed, err)
		}
		c.dc = &dc
	case platform.ModeAccelerated:
		rc, err := c.display.CreateRenderContext(win, vis)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRenderContextCreationFailed, err)
		}
		c.rc = &rc
		c.logger.Debug("render context ready", "gl_version", rc.GLVersion, "double_buffered", rc.DoubleBuffered)
	default:
		return fmt.Errorf("%w: unsupported mode %s", ErrContextCreationFailed, c.mode)
	}

	c.node = scene.NewNode(box, State{
		ScreenWidth:  c.screen.Width,
		ScreenHeight: c.screen.Height,
	})
	return nil
}

// windowBox fills a zero width or height from the screen.
func windowBox(b geometry.Box, screen platform.Screen) geometry.Box {
	if b.Width <= 0 {
		b.Width = screen.Width
	}
	if b.Height <= 0 {
		b.Height = screen.Height
	}
	return geometry.NewBox(b.X, b.Y, b.Width, b.Height)
}

func clearColor(c color.Color) [4]float32 {
	if c == nil {
		return [4]float32{0, 0, 0, 1}
	}
	r, g, b, a := c.RGBA()
	return [4]float32{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}

// release frees whatever has been acquired, in teardown order.
func (c *Canvas) release() {
	if c.mapped {
		if err := c.display.UnmapWindow(c.window); err != nil {
			c.logger.Debug("unmap on close failed", "error", err)
		}
		c.mapped = false
	}
	if c.rc != nil {
		c.display.DestroyRenderContext(*c.rc)
		c.rc = nil
	}
	if c.dc != nil {
		c.display.FreeDrawingContext(*c.dc)
		c.dc = nil
	}
	close(c.stop)
	c.display.Close()
	c.phase = phaseClosed
	c.closed.Store(true)
}

func (c *Canvas) mustBeLive(op string) {
	if c.phase == phaseClosed {
		misuse("%s on closed canvas", op)
	}
}

// Display returns the connection identifier the canvas was opened on.
func (c *Canvas) Display() string { return c.id }

// Mode returns the rendering mode.
func (c *Canvas) Mode() platform.Mode { return c.mode }

// Window returns the native window handle.
func (c *Canvas) Window() platform.WindowID { return c.window }

// Box returns the window geometry.
func (c *Canvas) Box() geometry.Box { return c.node.Box }

// State returns a copy of the canvas metadata.
func (c *Canvas) State() State { return c.node.State }

// Mapped reports whether the window is currently shown.
func (c *Canvas) Mapped() bool { return c.mapped }

// Closed reports whether Close has run. It is safe to call from any goroutine.
func (c *Canvas) Closed() bool { return c.closed.Load() }

// Phase returns the lifecycle phase name.
func (c *Canvas) Phase() string { return c.phase.String() }

// SetTitle sets WM_NAME and _NET_WM_NAME on the window.
func (c *Canvas) SetTitle(title string) error {
	c.mustBeLive("SetTitle")
	if err := c.display.SetTitle(c.window, title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	return nil
}

// Show maps the window. Showing a mapped window does nothing.
func (c *Canvas) Show() error {
	c.mustBeLive("Show")
	if c.mapped {
		return nil
	}
	if err := c.display.MapWindow(c.window); err != nil {
		return fmt.Errorf("map window: %w", err)
	}
	c.mapped = true
	return nil
}

// Hide unmaps the window. Hiding an unmapped window does nothing.
func (c *Canvas) Hide() error {
	c.mustBeLive("Hide")
	if !c.mapped {
		return nil
	}
	if err := c.display.UnmapWindow(c.window); err != nil {
		return fmt.Errorf("unmap window: %w", err)
	}
	c.mapped = false
	return nil
}

// Flush pushes buffered requests to the server and waits for them.
func (c *Canvas) Flush() error {
	c.mustBeLive("Flush")
	return c.display.Flush()
}

// Open registers WM_DELETE_WINDOW with the window manager and shows the
// window. It may be called once.
func (c *Canvas) Open() error {
	switch c.phase {
	case phaseCreated:
	case phaseClosed:
		misuse("Open on closed canvas")
	default:
		misuse("Open called twice")
	}

	protocols, err := c.display.InternAtom(atomWMProtocols)
	if err != nil {
		return fmt.Errorf("intern %s: %w", atomWMProtocols, err)
	}
	deleteWindow, err := c.display.InternAtom(atomWMDeleteWindow)
	if err != nil {
		return fmt.Errorf("intern %s: %w", atomWMDeleteWindow, err)
	}
	if err := c.display.SetProtocols(c.window, []platform.Atom{deleteWindow}); err != nil {
		return fmt.Errorf("register %s: %w", atomWMDeleteWindow, err)
	}
	c.node.State.WMProtocols = protocols
	c.node.State.WMDeleteWindow = deleteWindow
	c.phase = phaseOpen

	if err := c.Show(); err != nil {
		return err
	}
	c.logger.Debug("canvas open", "wm_protocols", protocols, "wm_delete_window", deleteWindow)
	return nil
}

// RequestClose asks the window to close the way a window manager does, by
// sending it a WM_DELETE_WINDOW client message. A running loop picks it up
// and closes the canvas.
func (c *Canvas) RequestClose() error {
	c.mustBeLive("RequestClose")
	st := c.node.State
	if st.WMProtocols == 0 {
		misuse("RequestClose before Open")
	}
	data := [5]uint32{uint32(st.WMDeleteWindow)}
	if err := c.display.SendClientMessage(c.window, st.WMProtocols, data); err != nil {
		return fmt.Errorf("send close request: %w", err)
	}
	return c.display.Flush()
}

// Close releases every resource. Calling it twice panics.
func (c *Canvas) Close() {
	if c.phase == phaseClosed {
		misuse("Close called twice")
	}
	c.release()
	c.logger.Debug("canvas closed")
}
