package canvas

import (
	"fmt"
	"image/color"

	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/scene"
)

// RenderTarget is what a TextRenderer draws into.
type RenderTarget struct {
	Display platform.Display
	Window  platform.WindowID
	Context platform.RenderContext
}

// TextRenderer draws text through an accelerated context. The framebuffer
// has already been cleared when it is called.
type TextRenderer func(t RenderTarget, text string, x, y int) error

var _ scene.Surface = (*Canvas)(nil)

// DrawText draws text with its baseline origin at (x, y) and flushes.
//
// In 2-D mode the string is drawn with the current colors; strings longer
// than 255 bytes are cut at the protocol limit. In accelerated mode the
// framebuffer is cleared to the background color and the text is handed to
// Options.TextRenderer.
func (c *Canvas) DrawText(text string, x, y int) error {
	c.mustBeLive("DrawText")
	if err := platform.CheckPoint(geometry.Point{X: x, Y: y}); err != nil {
		return fmt.Errorf("draw text: %w", err)
	}
	switch {
	case c.dc != nil:
		if err := c.display.DrawText(c.window, *c.dc, x, y, text); err != nil {
			return fmt.Errorf("draw text: %w", err)
		}
	case c.rc != nil:
		if err := c.display.ClearRender(c.window, *c.rc, c.clearColor); err != nil {
			return fmt.Errorf("clear framebuffer: %w", err)
		}
		if c.textRenderer != nil {
			target := RenderTarget{Display: c.display, Window: c.window, Context: *c.rc}
			if err := c.textRenderer(target, text, x, y); err != nil {
				return fmt.Errorf("render text: %w", err)
			}
		} else if !c.warnedText {
			c.warnedText = true
			c.logger.Warn("text rendering is not implemented for accelerated mode; only clearing", "text", text)
		}
	}
	return c.Flush()
}

// SetColors changes the colors used by subsequent 2-D drawing. Accelerated
// canvases only take the background, as the clear color.
func (c *Canvas) SetColors(fg, bg color.Color) error {
	c.mustBeLive("SetColors")
	if c.dc == nil {
		if bg != nil {
			c.clearColor = clearColor(bg)
		}
		return nil
	}

	fgPixel, bgPixel := c.fg, c.bg
	var err error
	if fg != nil {
		if fgPixel, err = c.display.AllocColor(fg); err != nil {
			return fmt.Errorf("allocate foreground: %w", err)
		}
	}
	if bg != nil {
		if bgPixel, err = c.display.AllocColor(bg); err != nil {
			return fmt.Errorf("allocate background: %w", err)
		}
	}
	if err := c.display.SetColors(*c.dc, fgPixel, bgPixel); err != nil {
		return fmt.Errorf("set colors: %w", err)
	}
	c.fg, c.bg = fgPixel, bgPixel
	if bg != nil {
		c.clearColor = clearColor(bg)
	}
	return nil
}

// Add appends a drawable to the canvas scene. It is drawn on the next Redraw.
func (c *Canvas) Add(d scene.Drawable) {
	c.mustBeLive("Add")
	c.node.Add(d)
}

// Redraw draws every child of the canvas scene in insertion order.
func (c *Canvas) Redraw() error {
	c.mustBeLive("Redraw")
	return c.node.Draw(c)
}

// Children returns the number of drawables in the canvas scene.
func (c *Canvas) Children() int {
	return len(c.node.Children())
}
