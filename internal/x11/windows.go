package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowConfig holds the parameters for CreateWindow.
type WindowConfig struct {
	X, Y          int
	Width, Height int
	Depth         byte
	Visual        xproto.Visualid
	Background    uint32
	Border        uint32
	EventMask     uint32
}

// CreateWindow creates an InputOutput top-level window. A colormap is
// created when the visual differs from the root visual; it is released
// together with the connection.
func (c *Connection) CreateWindow(cfg WindowConfig) (xproto.Window, error) {
	// The server rejects zero sized windows.
	width, height := max(cfg.Width, 1), max(cfg.Height, 1)
	x, y, w, h, err := wireGeometry(cfg.X, cfg.Y, width, height)
	if err != nil {
		return 0, fmt.Errorf("window geometry: %w", err)
	}

	conn := c.Conn()
	screen := c.Screen()

	colormap := screen.DefaultColormap
	if cfg.Visual != screen.RootVisual {
		cmap, err := xproto.NewColormapId(conn)
		if err != nil {
			return 0, err
		}
		err = xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, cfg.Visual).Check()
		if err != nil {
			return 0, fmt.Errorf("failed to create colormap: %w", err)
		}
		colormap = cmap
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		cfg.Depth,
		wid,
		c.Root,
		x, y,
		w, h,
		0, // border_width
		xproto.WindowClassInputOutput,
		cfg.Visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
		// Value list order follows the bit positions of the mask (low → high).
		[]uint32{cfg.Background, cfg.Border, cfg.EventMask, uint32(colormap)},
	).Check()
	if err != nil {
		return 0, err
	}

	return wid, nil
}

// MapWindow makes the window visible.
func (c *Connection) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn(), win).Check()
}

// UnmapWindow hides the window without destroying it.
func (c *Connection) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.Conn(), win).Check()
}

// SetTitle sets both the ICCCM WM_NAME and the EWMH _NET_WM_NAME so that
// old and new window managers show the same title.
func (c *Connection) SetTitle(win xproto.Window, title string) error {
	if err := icccm.WmNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	return nil
}

// RootVisual returns the root visual with its depth and class.
func (c *Connection) RootVisual() (xproto.VisualInfo, byte, error) {
	screen := c.Screen()
	info, depth, ok := c.FindVisual(screen.RootVisual)
	if !ok {
		return xproto.VisualInfo{}, 0, fmt.Errorf("root visual 0x%x not listed by screen", screen.RootVisual)
	}
	return info, depth, nil
}

// FindVisual looks a visual up in the screen's allowed depths.
func (c *Connection) FindVisual(id xproto.Visualid) (xproto.VisualInfo, byte, bool) {
	for _, depth := range c.Screen().AllowedDepths {
		for _, vis := range depth.Visuals {
			if vis.VisualId == id {
				return vis, depth.Depth, true
			}
		}
	}
	return xproto.VisualInfo{}, 0, false
}

// AllocColor resolves an 8-bit RGB triple to a pixel in the default colormap.
func (c *Connection) AllocColor(r, g, b uint8) (uint32, error) {
	reply, err := xproto.AllocColor(
		c.Conn(),
		c.Screen().DefaultColormap,
		uint16(r)<<8|uint16(r),
		uint16(g)<<8|uint16(g),
		uint16(b)<<8|uint16(b),
	).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate color #%02x%02x%02x: %w", r, g, b, err)
	}
	return reply.Pixel, nil
}
