package canvas

import (
	"errors"
	"image/color"
	"testing"

	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/platform/platformtest"
	"github.com/1broseidon/pm/internal/scene"
)

func TestDrawText_2D(t *testing.T) {
	c, d := openTestCanvas(t, Options{})
	defer c.Close()

	if err := c.DrawText("hello", 20, 30); err != nil {
		t.Fatalf("DrawText() error = %v", err)
	}
	texts := d.Texts()
	if len(texts) != 1 || texts[0] != (platformtest.Text{Window: c.Window(), X: 20, Y: 30, Text: "hello"}) {
		t.Fatalf("drawn = %+v", texts)
	}
	if got := tail(d, 2); got[0] != "DrawText" || got[1] != "Flush" {
		t.Fatalf("DrawText was not followed by Flush: %v", got)
	}
}

func TestDrawText_RejectsPositionOutsideProtocolRange(t *testing.T) {
	for _, mode := range []platform.Mode{platform.Mode2D, platform.ModeAccelerated} {
		t.Run(mode.String(), func(t *testing.T) {
			c, d := openTestCanvas(t, Options{Mode: mode})
			defer c.Close()

			for _, p := range []geometry.Point{{X: 40000, Y: 10}, {X: 10, Y: -32769}} {
				err := c.DrawText("hello", p.X, p.Y)
				if !errors.Is(err, platform.ErrOutOfRange) {
					t.Fatalf("DrawText at %+v error = %v, want ErrOutOfRange", p, err)
				}
			}
			if d.Count("DrawText") != 0 || d.Count("ClearRender") != 0 {
				t.Fatalf("out of range text reached the display: %v", d.Calls())
			}
		})
	}
}

func TestDrawText_Accelerated(t *testing.T) {
	var rendered []string
	c, d := openTestCanvas(t, Options{
		Mode:       platform.ModeAccelerated,
		Background: color.RGBA{R: 0xff, A: 0xff},
		TextRenderer: func(target RenderTarget, text string, x, y int) error {
			if target.Window == 0 || target.Display == nil {
				return errors.New("empty render target")
			}
			rendered = append(rendered, text)
			return nil
		},
	})
	defer c.Close()

	if err := c.DrawText("gl", 0, 0); err != nil {
		t.Fatalf("DrawText() error = %v", err)
	}
	clears := d.Clears()
	if len(clears) != 1 || clears[0] != [4]float32{1, 0, 0, 1} {
		t.Fatalf("clears = %v, want one red clear", clears)
	}
	if len(rendered) != 1 || rendered[0] != "gl" {
		t.Fatalf("renderer got %v", rendered)
	}
	if len(d.Texts()) != 0 {
		t.Fatalf("core text drawn in accelerated mode")
	}
}

func TestDrawText_AcceleratedWithoutRenderer(t *testing.T) {
	c, d := openTestCanvas(t, Options{Mode: platform.ModeAccelerated})
	defer c.Close()

	for i := 0; i < 2; i++ {
		if err := c.DrawText("gl", 0, 0); err != nil {
			t.Fatalf("DrawText() error = %v", err)
		}
	}
	if got := d.Clears(); len(got) != 2 || got[0] != [4]float32{0, 0, 0, 1} {
		t.Fatalf("clears = %v", got)
	}
	if !c.warnedText {
		t.Fatalf("missing renderer was not reported")
	}
}

func TestSetColors(t *testing.T) {
	c, d := openTestCanvas(t, Options{})
	defer c.Close()

	if err := c.SetColors(color.RGBA{B: 0xff, A: 0xff}, nil); err != nil {
		t.Fatalf("SetColors() error = %v", err)
	}
	spec := d.GCSpec(*c.dc)
	if spec.Foreground != 0x0000ff || spec.Background != d.ScreenInfo.WhitePixel {
		t.Fatalf("gc colors fg=%#x bg=%#x", spec.Foreground, spec.Background)
	}
}

func TestSetColors_FailureKeepsColors(t *testing.T) {
	c, d := openTestCanvas(t, Options{})
	defer c.Close()

	d.Fail["SetColors"] = nil
	before := c.fg
	if err := c.SetColors(color.White, color.Black); err == nil {
		t.Fatalf("SetColors() error = nil, want failure")
	}
	if c.fg != before {
		t.Fatalf("foreground changed on failure")
	}
}

func TestRedraw_DrawsChildrenInOrder(t *testing.T) {
	c, d := openTestCanvas(t, Options{})
	defer c.Close()

	c.Add(scene.Label{Text: "one", At: geometry.Point{X: 1, Y: 1}})
	c.Add(scene.Label{Text: "two", At: geometry.Point{X: 2, Y: 2}})
	c.Add(nil)
	if err := c.Redraw(); err != nil {
		t.Fatalf("Redraw() error = %v", err)
	}

	texts := d.Texts()
	if len(texts) != 2 || texts[0].Text != "one" || texts[1].Text != "two" {
		t.Fatalf("drawn = %+v", texts)
	}
}
