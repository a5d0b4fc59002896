package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pm/internal/canvas"
	"github.com/1broseidon/pm/internal/platform/platformtest"
)

type testEnv struct {
	ctx     context.Context
	session *mcpsdk.ClientSession
	canvas  *canvas.Canvas
	display *platformtest.Display
	dialer  *platformtest.Dialer
	loop    <-chan error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dialer := &platformtest.Dialer{}

	c, err := canvas.New(dialer.Dial, canvas.Options{Display: ":3", Logger: logger})
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	if err := c.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	display := dialer.Last()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	loop := c.Start(ctx)

	srv := NewServer(c, dialer.Dial, logger)
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	if _, err := srv.Connect(ctx, serverTransport); err != nil {
		cancel()
		t.Fatalf("server connect: %v", err)
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "pm-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("client connect: %v", err)
	}

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-loop
		if !c.Closed() {
			c.Close()
		}
	})
	return &testEnv{ctx: ctx, session: session, canvas: c, display: display, dialer: dialer, loop: loop}
}

func (e *testEnv) call(t *testing.T, name string, args any, out any) *mcpsdk.CallToolResult {
	t.Helper()
	res, err := e.session.CallTool(e.ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			t.Fatalf("marshal structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s output: %v", name, err)
		}
	}
	return res
}

func TestCanvasStatus(t *testing.T) {
	env := newTestEnv(t)

	var out CanvasStatusOutput
	if res := env.call(t, "canvas_status", map[string]any{}, &out); res.IsError {
		t.Fatalf("canvas_status returned error: %+v", res.Content)
	}
	if out.Display != ":3" || out.Mode != "2d" || out.Phase != "running" {
		t.Fatalf("status = %+v", out)
	}
	if !out.Mapped || out.Closed {
		t.Fatalf("mapped=%v closed=%v, want mapped open canvas", out.Mapped, out.Closed)
	}
	if out.ScreenWidth != 800 || out.ScreenHeight != 600 {
		t.Fatalf("screen = %dx%d", out.ScreenWidth, out.ScreenHeight)
	}
}

func TestDrawText(t *testing.T) {
	env := newTestEnv(t)

	var out DrawTextOutput
	if res := env.call(t, "draw_text", map[string]any{"text": "hi", "x": 4, "y": 12}, &out); res.IsError {
		t.Fatalf("draw_text returned error: %+v", res.Content)
	}
	if !out.Drawn || out.Children != 1 {
		t.Fatalf("output = %+v", out)
	}
	texts := env.display.Texts()
	if len(texts) != 1 || texts[0].Text != "hi" || texts[0].X != 4 || texts[0].Y != 12 {
		t.Fatalf("drawn = %+v", texts)
	}
}

func TestDrawText_RequiresText(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "draw_text", map[string]any{"text": "  "}, nil)
	if !res.IsError {
		t.Fatalf("expected error result for blank text")
	}
	if len(env.display.Texts()) != 0 {
		t.Fatalf("blank text was drawn")
	}
}

func TestDrawText_RejectsOutOfRangePosition(t *testing.T) {
	env := newTestEnv(t)

	var out CanvasStatusOutput
	res := env.call(t, "draw_text", map[string]any{"text": "far", "x": 40000, "y": 12}, nil)
	if !res.IsError {
		t.Fatalf("expected error result for x=40000")
	}
	if len(env.display.Texts()) != 0 {
		t.Fatalf("out of range text was drawn: %+v", env.display.Texts())
	}
	if res := env.call(t, "canvas_status", map[string]any{}, &out); res.IsError {
		t.Fatalf("canvas_status returned error: %+v", res.Content)
	}
	if out.Children != 0 {
		t.Fatalf("rejected label was added to the scene: children=%d", out.Children)
	}
}

func TestSetTitle(t *testing.T) {
	env := newTestEnv(t)

	var out SetTitleOutput
	if res := env.call(t, "set_title", map[string]any{"title": "renamed"}, &out); res.IsError {
		t.Fatalf("set_title returned error: %+v", res.Content)
	}
	if got := env.display.Title(env.canvas.Window()); got != "renamed" {
		t.Fatalf("title = %q", got)
	}
}

func TestShowHideWindow(t *testing.T) {
	env := newTestEnv(t)

	var out VisibilityOutput
	env.call(t, "hide_window", map[string]any{}, &out)
	if out.Mapped || env.display.Mapped(env.canvas.Window()) {
		t.Fatalf("window still mapped after hide_window")
	}
	env.call(t, "show_window", map[string]any{}, &out)
	env.call(t, "show_window", map[string]any{}, &out)
	if !out.Mapped || !env.display.Mapped(env.canvas.Window()) {
		t.Fatalf("window not mapped after show_window")
	}
	// One map from Open plus one after the hide.
	if n := env.display.Count("MapWindow"); n != 2 {
		t.Fatalf("MapWindow sent %d times, want 2", n)
	}
}

func TestCloseCanvas(t *testing.T) {
	env := newTestEnv(t)

	var out CloseCanvasOutput
	if res := env.call(t, "close_canvas", map[string]any{}, &out); res.IsError {
		t.Fatalf("close_canvas returned error: %+v", res.Content)
	}
	if !out.Requested {
		t.Fatalf("close not requested")
	}

	select {
	case err := <-env.loop:
		if err != nil {
			t.Fatalf("loop ended with %v", err)
		}
	case <-env.ctx.Done():
		t.Fatalf("loop did not end after close_canvas")
	}
	if !env.canvas.Closed() || !env.display.Closed() {
		t.Fatalf("canvas not torn down")
	}

	var status CanvasStatusOutput
	env.call(t, "canvas_status", map[string]any{}, &status)
	if !status.Closed || status.Phase != "closed" {
		t.Fatalf("status after close = %+v", status)
	}
	if res := env.call(t, "draw_text", map[string]any{"text": "late"}, nil); !res.IsError {
		t.Fatalf("draw_text on closed canvas succeeded")
	}
}

func TestScreenCenter(t *testing.T) {
	env := newTestEnv(t)

	var out ScreenCenterOutput
	if res := env.call(t, "screen_center", map[string]any{}, &out); res.IsError {
		t.Fatalf("screen_center returned error: %+v", res.Content)
	}
	if out.Display != ":3" || out.X != 400 || out.Y != 300 {
		t.Fatalf("center = %+v", out)
	}
	// The canvas connection stays open; the transient one is gone.
	if got := env.dialer.Open(); got != 1 {
		t.Fatalf("open displays = %d, want 1", got)
	}
}
