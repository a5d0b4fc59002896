package canvas

import (
	"errors"
	"image/color"
	"io"
	"log/slog"
	"reflect"
	"testing"

	goerrors "github.com/go-errors/errors"

	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/platform/platformtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCanvas(t *testing.T, opts Options) (*Canvas, *platformtest.Display) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	dialer := &platformtest.Dialer{}
	c, err := New(dialer.Dial, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, dialer.Last()
}

func expectMisuse(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected misuse panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrMisuse) {
			t.Fatalf("panic value = %#v, want error wrapping ErrMisuse", r)
		}
		var stacked *goerrors.Error
		if !errors.As(err, &stacked) || len(stacked.StackFrames()) == 0 {
			t.Fatalf("misuse panic carries no stack")
		}
	}()
	fn()
}

// tail returns the last n calls recorded on d.
func tail(d *platformtest.Display, n int) []string {
	calls := d.Calls()
	if len(calls) < n {
		return calls
	}
	return calls[len(calls)-n:]
}

func TestNew_ConnectionFailed(t *testing.T) {
	dialer := &platformtest.Dialer{Err: errors.New("connection refused")}

	c, err := New(dialer.Dial, Options{Display: "nohost:7", Logger: quietLogger()})
	if c != nil {
		t.Fatalf("New() returned a canvas on failure")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("error = %v, want ErrConnectionFailed", err)
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error %T is not a *ConnectionError", err)
	}
	if connErr.Display != "nohost:7" {
		t.Fatalf("ConnectionError.Display = %q, want %q", connErr.Display, "nohost:7")
	}
	if got := dialer.Open(); got != 0 {
		t.Fatalf("open displays = %d, want 0", got)
	}
}

func TestNew_DefaultDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	dialer := &platformtest.Dialer{}

	c, err := New(dialer.Dial, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if got := dialer.Names(); !reflect.DeepEqual(got, []string{":0"}) {
		t.Fatalf("dialed %v, want [:0]", got)
	}
	if c.Display() != ":0" {
		t.Fatalf("Display() = %q, want :0", c.Display())
	}
}

func TestNew_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		mode platform.Mode
		step string
		want error
	}{
		{name: "visual", mode: platform.Mode2D, step: "ChooseVisual", want: ErrNoMatchingVisual},
		{name: "color", mode: platform.Mode2D, step: "AllocColor", want: ErrContextCreationFailed},
		{name: "window", mode: platform.Mode2D, step: "CreateWindow", want: ErrWindowCreationFailed},
		{name: "gc", mode: platform.Mode2D, step: "CreateDrawingContext", want: ErrContextCreationFailed},
		{name: "glx", mode: platform.ModeAccelerated, step: "CreateRenderContext", want: ErrRenderContextCreationFailed},
		{name: "title", mode: platform.Mode2D, step: "SetTitle", want: platformtest.ErrInjected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := &platformtest.Dialer{Setup: func(d *platformtest.Display) {
				d.Fail[tt.step] = nil
			}}
			c, err := New(dialer.Dial, Options{
				Mode:       tt.mode,
				Title:      "rollback",
				Foreground: color.RGBA{R: 0xff, A: 0xff},
				Logger:     quietLogger(),
			})
			if c != nil {
				t.Fatalf("New() returned a canvas on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			d := dialer.Last()
			if !d.Closed() || d.CloseCount() != 1 {
				t.Fatalf("display closed=%v count=%d, want closed once", d.Closed(), d.CloseCount())
			}
			if d.DrawingContexts() != 0 || d.RenderContexts() != 0 {
				t.Fatalf("leaked contexts: gc=%d render=%d", d.DrawingContexts(), d.RenderContexts())
			}
			if dialer.Open() != 0 {
				t.Fatalf("open displays = %d, want 0", dialer.Open())
			}
		})
	}
}

func TestNew_NullWindow(t *testing.T) {
	dialer := &platformtest.Dialer{Setup: func(d *platformtest.Display) { d.NullWindow = true }}

	_, err := New(dialer.Dial, Options{Logger: quietLogger()})
	if !errors.Is(err, ErrWindowCreationFailed) {
		t.Fatalf("error = %v, want ErrWindowCreationFailed", err)
	}
	if d := dialer.Last(); !d.Closed() || d.Count("CreateDrawingContext") != 0 {
		t.Fatalf("null window was not rolled back: %v", d.Calls())
	}
}

func TestNew_RejectsGeometryOutsideProtocolRange(t *testing.T) {
	tests := []struct {
		name string
		box  geometry.Box
	}{
		{name: "x", box: geometry.NewBox(40000, 0, 100, 100)},
		{name: "y", box: geometry.NewBox(0, -40000, 100, 100)},
		{name: "width", box: geometry.NewBox(0, 0, 70000, 100)},
		{name: "height", box: geometry.NewBox(0, 0, 100, 65536)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := &platformtest.Dialer{}
			_, err := New(dialer.Dial, Options{Box: tt.box, Logger: quietLogger()})
			if !errors.Is(err, ErrWindowCreationFailed) || !errors.Is(err, platform.ErrOutOfRange) {
				t.Fatalf("error = %v, want ErrWindowCreationFailed and ErrOutOfRange", err)
			}
			d := dialer.Last()
			if d.Count("CreateWindow") != 0 {
				t.Fatalf("window created with out of range geometry: %v", d.Calls())
			}
			if !d.Closed() {
				t.Fatalf("display left open")
			}
		})
	}
}

func TestNew_Geometry(t *testing.T) {
	c, d := newTestCanvas(t, Options{Box: geometry.NewBox(10, 20, 300, 200)})
	defer c.Close()

	if got, want := c.Box(), geometry.NewBox(10, 20, 300, 200); got != want {
		t.Fatalf("Box() = %+v, want %+v", got, want)
	}
	st := c.State()
	if st.ScreenWidth != 800 || st.ScreenHeight != 600 {
		t.Fatalf("screen = %dx%d, want 800x600", st.ScreenWidth, st.ScreenHeight)
	}
	if st.WMProtocols != 0 || st.WMDeleteWindow != 0 {
		t.Fatalf("atoms set before Open: %+v", st)
	}
	if d.Windows() != 1 || d.DrawingContexts() != 1 {
		t.Fatalf("windows=%d gcs=%d, want 1 each", d.Windows(), d.DrawingContexts())
	}
	if d.Mapped(c.Window()) {
		t.Fatalf("window mapped before Open")
	}
}

func TestNew_ZeroSizeTakesScreen(t *testing.T) {
	c, _ := newTestCanvas(t, Options{Box: geometry.NewBox(5, 5, 0, 0)})
	defer c.Close()

	if got, want := c.Box(), geometry.NewBox(5, 5, 800, 600); got != want {
		t.Fatalf("Box() = %+v, want %+v", got, want)
	}
}

func TestNew_Colors(t *testing.T) {
	fg := color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}
	c, d := newTestCanvas(t, Options{Foreground: fg})
	defer c.Close()

	if got := d.Allocated(); len(got) != 1 || got[0] != color.Color(fg) {
		t.Fatalf("allocated %v, want only the foreground", got)
	}
	if c.fg != 0x112233 || c.bg != d.ScreenInfo.WhitePixel {
		t.Fatalf("pixels fg=%#x bg=%#x", c.fg, c.bg)
	}
}

func TestNew_AcceleratedSkipsColorAllocation(t *testing.T) {
	c, d := newTestCanvas(t, Options{
		Mode:       platform.ModeAccelerated,
		Foreground: color.White,
		Background: color.Black,
	})
	defer c.Close()

	if n := d.Count("AllocColor"); n != 0 {
		t.Fatalf("AllocColor called %d times in accelerated mode", n)
	}
	if d.RenderContexts() != 1 || d.DrawingContexts() != 0 {
		t.Fatalf("render=%d gc=%d, want 1/0", d.RenderContexts(), d.DrawingContexts())
	}
}

func TestShowHide_Idempotent(t *testing.T) {
	c, d := newTestCanvas(t, Options{})
	defer c.Close()

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.Show(); err != nil {
		t.Fatalf("second Show() error = %v", err)
	}
	if !c.Mapped() || !d.Mapped(c.Window()) {
		t.Fatalf("window not mapped after Show")
	}
	if n := d.Count("MapWindow"); n != 1 {
		t.Fatalf("MapWindow sent %d times, want 1", n)
	}

	if err := c.Hide(); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if err := c.Hide(); err != nil {
		t.Fatalf("second Hide() error = %v", err)
	}
	if c.Mapped() || d.Mapped(c.Window()) {
		t.Fatalf("window mapped after Hide")
	}
	if err := c.Show(); err != nil {
		t.Fatalf("Show() after Hide error = %v", err)
	}
	if !d.Mapped(c.Window()) {
		t.Fatalf("Show() after Hide did not restore mapped state")
	}
}

func TestSetTitle(t *testing.T) {
	c, d := newTestCanvas(t, Options{Title: "first"})
	defer c.Close()

	if got := d.Title(c.Window()); got != "first" {
		t.Fatalf("initial title = %q", got)
	}
	if err := c.SetTitle("second"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	if got := d.Title(c.Window()); got != "second" {
		t.Fatalf("title = %q, want second", got)
	}
}

func TestOpen_RegistersCloseProtocol(t *testing.T) {
	c, d := newTestCanvas(t, Options{})
	defer c.Close()

	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	st := c.State()
	if st.WMProtocols != d.Atom("WM_PROTOCOLS") || st.WMDeleteWindow != d.Atom("WM_DELETE_WINDOW") {
		t.Fatalf("cached atoms %+v do not match server", st)
	}
	if got := d.Protocols(c.Window()); !reflect.DeepEqual(got, []platform.Atom{st.WMDeleteWindow}) {
		t.Fatalf("WM_PROTOCOLS = %v, want [%d]", got, st.WMDeleteWindow)
	}
	if !c.Mapped() {
		t.Fatalf("Open did not show the window")
	}
}

func TestOpen_TwicePanics(t *testing.T) {
	c, d := newTestCanvas(t, Options{})
	defer c.Close()

	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	expectMisuse(t, func() { _ = c.Open() })
	if n := d.Count("SetProtocols"); n != 1 {
		t.Fatalf("SetProtocols called %d times, want 1", n)
	}
}

func TestClose_Order(t *testing.T) {
	tests := []struct {
		name string
		mode platform.Mode
		want []string
	}{
		{name: "2d", mode: platform.Mode2D, want: []string{"UnmapWindow", "FreeDrawingContext", "Close"}},
		{name: "gl", mode: platform.ModeAccelerated, want: []string{"UnmapWindow", "DestroyRenderContext", "Close"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, d := newTestCanvas(t, Options{Mode: tt.mode})
			if err := c.Open(); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			c.Close()

			if got := tail(d, 3); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("teardown = %v, want %v", got, tt.want)
			}
			if d.CloseCount() != 1 || d.DrawingContexts() != 0 || d.RenderContexts() != 0 {
				t.Fatalf("resources left after Close: close=%d gc=%d render=%d",
					d.CloseCount(), d.DrawingContexts(), d.RenderContexts())
			}
			if !c.Closed() {
				t.Fatalf("Closed() = false after Close")
			}
		})
	}
}

func TestClose_UnmappedSkipsUnmap(t *testing.T) {
	c, d := newTestCanvas(t, Options{})
	c.Close()

	if n := d.Count("UnmapWindow"); n != 0 {
		t.Fatalf("UnmapWindow sent %d times for a window never shown", n)
	}
	if got := tail(d, 2); !reflect.DeepEqual(got, []string{"FreeDrawingContext", "Close"}) {
		t.Fatalf("teardown = %v", got)
	}
}

func TestClose_Misuse(t *testing.T) {
	c, d := newTestCanvas(t, Options{})
	c.Close()

	expectMisuse(t, c.Close)
	expectMisuse(t, func() { _ = c.Show() })
	expectMisuse(t, func() { _ = c.SetTitle("x") })
	expectMisuse(t, func() { _ = c.DrawText("x", 0, 0) })
	expectMisuse(t, func() { _ = c.Open() })
	if d.CloseCount() != 1 {
		t.Fatalf("display closed %d times, want 1", d.CloseCount())
	}
}
