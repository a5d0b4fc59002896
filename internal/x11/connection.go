package x11

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// DefaultDisplay is used when neither an explicit identifier nor $DISPLAY is set.
const DefaultDisplay = ":0"

// ErrConnectionClosed is returned by WaitEvent after Close.
var ErrConnectionClosed = errors.New("x11 connection closed")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string

	glxReady bool
}

// ResolveDisplay picks the connection identifier: explicit value first,
// then $DISPLAY, then DefaultDisplay.
func ResolveDisplay(display string) string {
	if d := strings.TrimSpace(display); d != "" {
		return d
	}
	if d := strings.TrimSpace(os.Getenv("DISPLAY")); d != "" {
		return d
	}
	return DefaultDisplay
}

// NewConnection connects to the X11 server named by display.
func NewConnection(display string) (*Connection, error) {
	display = ResolveDisplay(display)
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("could not open X display %s: %w", display, err)
	}

	// Needed to turn key codes into names when logging key events.
	keybind.Initialize(xu)

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Display: display,
	}, nil
}

// Conn returns the raw xgb connection.
func (c *Connection) Conn() *xgb.Conn {
	return c.XUtil.Conn()
}

// Screen returns the default screen.
func (c *Connection) Screen() *xproto.ScreenInfo {
	return c.XUtil.Screen()
}

// ScreenNumber returns the index of the default screen.
func (c *Connection) ScreenNumber() int {
	return c.Conn().DefaultScreen
}

// Sync blocks until the server has processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// WaitEvent blocks until the next event or protocol error arrives. It
// returns ErrConnectionClosed once the connection is gone.
func (c *Connection) WaitEvent() (xgb.Event, xgb.Error, error) {
	ev, xerr := c.Conn().WaitForEvent()
	if ev == nil && xerr == nil {
		return nil, nil, ErrConnectionClosed
	}
	return ev, xerr, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
