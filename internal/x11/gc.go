package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/text/encoding/charmap"
)

// fallbackFonts are tried after the requested font; "fixed" exists on every
// X server.
var fallbackFonts = []string{"fixed", "9x15", "8x13", "6x13"}

// maxText8 is the longest string a single ImageText8 request can carry.
const maxText8 = 255

// TextContext is a graphics context with a core font loaded into it.
type TextContext struct {
	GC   xproto.Gcontext
	Font xproto.Font
}

// CreateTextContext opens a font and creates a GC on win that draws with it.
// Nothing is left allocated when it fails.
func (c *Connection) CreateTextContext(win xproto.Window, fontName string, fg, bg uint32) (TextContext, error) {
	conn := c.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return TextContext{}, err
	}

	names := fallbackFonts
	if fontName != "" {
		names = append([]string{fontName}, fallbackFonts...)
	}
	opened := false
	for _, name := range names {
		err = xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check()
		if err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return TextContext{}, fmt.Errorf("no usable core font (tried %v): %w", names, err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return TextContext{}, err
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(win),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			fg,           // foreground
			bg,           // background
			uint32(font), // font
			0,            // graphics_exposures=false
		},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		return TextContext{}, err
	}

	return TextContext{GC: gc, Font: font}, nil
}

// SetColors changes the foreground and background of the context.
func (c *Connection) SetColors(tc TextContext, fg, bg uint32) {
	xproto.ChangeGC(
		c.Conn(),
		tc.GC,
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{fg, bg},
	)
}

// DrawText draws text with its baseline at (x, y). Core fonts are Latin-1:
// other characters are drawn as '?', and text longer than a single request
// allows is truncated.
func (c *Connection) DrawText(win xproto.Window, tc TextContext, x, y int, text string) error {
	wx, err := wireCoord("x", x)
	if err != nil {
		return err
	}
	wy, err := wireCoord("y", y)
	if err != nil {
		return err
	}
	encoded := text8(text)
	return xproto.ImageText8Checked(
		c.Conn(),
		byte(len(encoded)),
		xproto.Drawable(win),
		tc.GC,
		wx,
		wy,
		encoded,
	).Check()
}

// text8 encodes text as Latin-1, one byte per rune, stopping at maxText8
// bytes so a rune is never split.
func text8(text string) string {
	buf := make([]byte, 0, min(len(text), maxText8))
	for _, r := range text {
		if len(buf) == maxText8 {
			break
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		buf = append(buf, b)
	}
	return string(buf)
}

// FreeTextContext releases the GC and then its font.
func (c *Connection) FreeTextContext(tc TextContext) {
	conn := c.Conn()
	if tc.GC != 0 {
		xproto.FreeGC(conn, tc.GC)
	}
	if tc.Font != 0 {
		xproto.CloseFont(conn, tc.Font)
	}
}
