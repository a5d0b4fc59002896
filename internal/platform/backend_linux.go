//go:build linux

package platform

import (
	"fmt"
	"image/color"

	"github.com/1broseidon/pm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxDisplay wraps an X11 connection behind the platform Display interface.
type LinuxDisplay struct {
	conn     *x11.Connection
	contexts map[uint32]*x11.GLContext
}

var _ Display = (*LinuxDisplay)(nil)

// DialX11 is the Dialer for X11 display servers.
func DialX11(display string) (Display, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, err
	}
	return NewLinuxDisplay(conn), nil
}

// NewLinuxDisplay wraps an existing X11 connection.
func NewLinuxDisplay(conn *x11.Connection) *LinuxDisplay {
	return &LinuxDisplay{conn: conn, contexts: make(map[uint32]*x11.GLContext)}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (d *LinuxDisplay) XUtil() *xgbutil.XUtil {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.XUtil
}

func (d *LinuxDisplay) Screen() Screen {
	s := d.conn.Screen()
	return Screen{
		Number:     d.conn.ScreenNumber(),
		Width:      int(s.WidthInPixels),
		Height:     int(s.HeightInPixels),
		Root:       WindowID(s.Root),
		RootDepth:  s.RootDepth,
		RootVisual: VisualID(s.RootVisual),
		BlackPixel: s.BlackPixel,
		WhitePixel: s.WhitePixel,
	}
}

func (d *LinuxDisplay) ChooseVisual(mode Mode) (Visual, error) {
	switch mode {
	case Mode2D:
		info, depth, err := d.conn.RootVisual()
		if err != nil {
			return Visual{}, err
		}
		return Visual{ID: VisualID(info.VisualId), Depth: depth, Class: info.Class}, nil
	case ModeAccelerated:
		vis, err := d.conn.ChooseGLVisual()
		if err != nil {
			return Visual{}, err
		}
		return Visual{ID: VisualID(vis.ID), Depth: vis.Depth, Class: vis.Class, DoubleBuffered: vis.DoubleBuffered}, nil
	default:
		return Visual{}, fmt.Errorf("unsupported mode %v", mode)
	}
}

func (d *LinuxDisplay) AllocColor(c color.Color) (uint32, error) {
	r, g, b, _ := c.RGBA()
	return d.conn.AllocColor(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (d *LinuxDisplay) CreateWindow(spec WindowSpec) (WindowID, error) {
	wid, err := d.conn.CreateWindow(x11.WindowConfig{
		X:          spec.Box.X,
		Y:          spec.Box.Y,
		Width:      spec.Box.Width,
		Height:     spec.Box.Height,
		Depth:      spec.Visual.Depth,
		Visual:     xproto.Visualid(spec.Visual.ID),
		Background: spec.Background,
		Border:     spec.Border,
		EventMask:  uint32(spec.EventMask),
	})
	return WindowID(wid), err
}

func (d *LinuxDisplay) MapWindow(win WindowID) error {
	return d.conn.MapWindow(xproto.Window(win))
}

func (d *LinuxDisplay) UnmapWindow(win WindowID) error {
	return d.conn.UnmapWindow(xproto.Window(win))
}

func (d *LinuxDisplay) SetTitle(win WindowID, title string) error {
	return d.conn.SetTitle(xproto.Window(win), title)
}

func (d *LinuxDisplay) InternAtom(name string) (Atom, error) {
	atom, err := d.conn.InternAtom(name)
	return Atom(atom), err
}

func (d *LinuxDisplay) SetProtocols(win WindowID, protocols []Atom) error {
	atoms := make([]xproto.Atom, len(protocols))
	for i, a := range protocols {
		atoms[i] = xproto.Atom(a)
	}
	return d.conn.SetProtocols(xproto.Window(win), atoms)
}

func (d *LinuxDisplay) SendClientMessage(win WindowID, msgType Atom, data [5]uint32) error {
	return d.conn.SendClientMessage(xproto.Window(win), xproto.Atom(msgType), data)
}

func (d *LinuxDisplay) CreateDrawingContext(win WindowID, spec GCSpec) (DrawingContext, error) {
	tc, err := d.conn.CreateTextContext(xproto.Window(win), spec.Font, spec.Foreground, spec.Background)
	if err != nil {
		return DrawingContext{}, err
	}
	return DrawingContext{GC: uint32(tc.GC), Font: uint32(tc.Font)}, nil
}

func (d *LinuxDisplay) SetColors(dc DrawingContext, fg, bg uint32) error {
	d.conn.SetColors(textContext(dc), fg, bg)
	return nil
}

func (d *LinuxDisplay) DrawText(win WindowID, dc DrawingContext, x, y int, text string) error {
	return d.conn.DrawText(xproto.Window(win), textContext(dc), x, y, text)
}

func (d *LinuxDisplay) FreeDrawingContext(dc DrawingContext) {
	d.conn.FreeTextContext(textContext(dc))
}

func (d *LinuxDisplay) CreateRenderContext(win WindowID, vis Visual) (RenderContext, error) {
	ctx, err := d.conn.CreateGLContext(xproto.Window(win), x11.GLVisual{
		ID:             xproto.Visualid(vis.ID),
		Depth:          vis.Depth,
		Class:          vis.Class,
		DoubleBuffered: vis.DoubleBuffered,
	})
	if err != nil {
		return RenderContext{}, err
	}
	d.contexts[uint32(ctx.ID)] = ctx
	return RenderContext{
		ID:             uint32(ctx.ID),
		Tag:            uint32(ctx.Tag),
		DoubleBuffered: ctx.Double,
		GLVersion:      ctx.Table.Version,
	}, nil
}

func (d *LinuxDisplay) ClearRender(win WindowID, rc RenderContext, rgba [4]float32) error {
	ctx, ok := d.contexts[rc.ID]
	if !ok {
		return fmt.Errorf("unknown render context 0x%x", rc.ID)
	}
	return d.conn.Clear(ctx, rgba)
}

func (d *LinuxDisplay) DestroyRenderContext(rc RenderContext) {
	ctx, ok := d.contexts[rc.ID]
	if !ok {
		return
	}
	d.conn.DestroyGLContext(ctx)
	delete(d.contexts, rc.ID)
}

func (d *LinuxDisplay) Flush() error {
	d.conn.Sync()
	return nil
}

// NextEvent blocks until the next event. Protocol errors are returned as
// EventError events rather than failures.
func (d *LinuxDisplay) NextEvent() (Event, error) {
	ev, xerr, err := d.conn.WaitEvent()
	if err != nil {
		return Event{}, ErrClosed
	}
	if xerr != nil {
		return Event{Kind: EventError, Detail: xerr.Error()}, nil
	}
	return translateEvent(d.conn.XUtil, ev), nil
}

// Close disconnects from the server. Windows, colormaps and any resource
// not released explicitly go with the connection.
func (d *LinuxDisplay) Close() {
	if d != nil && d.conn != nil {
		d.conn.Close()
	}
}

func textContext(dc DrawingContext) x11.TextContext {
	return x11.TextContext{GC: xproto.Gcontext(dc.GC), Font: xproto.Font(dc.Font)}
}
