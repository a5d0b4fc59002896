// Package platformtest provides an in-memory platform.Display for tests.
package platformtest

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/1broseidon/pm/internal/platform"
)

// ErrInjected is the default failure returned by a step named in Fail.
var ErrInjected = errors.New("injected failure")

// Text is one DrawText call.
type Text struct {
	Window platform.WindowID
	X, Y   int
	Text   string
}

// Display records every request made against it. Events pushed with Push are
// returned by NextEvent, which blocks until an event arrives or Close is called.
type Display struct {
	mu sync.Mutex

	ScreenInfo platform.Screen
	// Fail maps a method name (e.g. "CreateWindow") to the error it returns.
	// A nil value means ErrInjected.
	Fail map[string]error
	// NullWindow makes CreateWindow succeed with the zero window.
	NullWindow bool

	calls    []string
	atoms    map[string]platform.Atom
	nextID   uint32
	windows  map[platform.WindowID]bool
	mapped   map[platform.WindowID]bool
	titles   map[platform.WindowID]string
	protos   map[platform.WindowID][]platform.Atom
	gcs      map[uint32]platform.GCSpec
	renders  map[uint32]bool
	texts    []Text
	clears   [][4]float32
	colors   []color.Color
	closed   bool
	closeCnt int

	events   chan platform.Event
	done     chan struct{}
	doneOnce sync.Once
}

var _ platform.Display = (*Display)(nil)

// New returns a fake with an 800x600 screen.
func New() *Display {
	return &Display{
		ScreenInfo: platform.Screen{
			Width:      800,
			Height:     600,
			Root:       1,
			RootDepth:  24,
			RootVisual: 0x21,
			BlackPixel: 0x000000,
			WhitePixel: 0xffffff,
		},
		Fail:    make(map[string]error),
		atoms:   make(map[string]platform.Atom),
		nextID:  0x400000,
		windows: make(map[platform.WindowID]bool),
		mapped:  make(map[platform.WindowID]bool),
		titles:  make(map[platform.WindowID]string),
		protos:  make(map[platform.WindowID][]platform.Atom),
		gcs:     make(map[uint32]platform.GCSpec),
		renders: make(map[uint32]bool),
		events:  make(chan platform.Event, 64),
		done:    make(chan struct{}),
	}
}

// record notes a call and returns the injected failure for it, if any.
func (d *Display) record(name string, args ...any) error {
	call := name
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		call += "(" + strings.Join(parts, ",") + ")"
	}
	d.calls = append(d.calls, call)
	if d.closed && name != "Close" {
		return platform.ErrClosed
	}
	if err, ok := d.Fail[name]; ok {
		if err == nil {
			err = fmt.Errorf("%s: %w", name, ErrInjected)
		}
		return err
	}
	return nil
}

func (d *Display) allocID() uint32 {
	d.nextID++
	return d.nextID
}

// Calls returns the method names in call order, without arguments.
func (d *Display) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		if idx := strings.IndexByte(c, '('); idx >= 0 {
			c = c[:idx]
		}
		out[i] = c
	}
	return out
}

// CallLog returns the calls with their arguments.
func (d *Display) CallLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Count returns how often name was called.
func (d *Display) Count(name string) int {
	n := 0
	for _, c := range d.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// Push queues an event for NextEvent.
func (d *Display) Push(ev platform.Event) {
	d.events <- ev
}

// Atom returns the atom assigned to name, interning it if needed.
func (d *Display) Atom(name string) platform.Atom {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.intern(name)
}

func (d *Display) intern(name string) platform.Atom {
	if a, ok := d.atoms[name]; ok {
		return a
	}
	a := platform.Atom(len(d.atoms) + 100)
	d.atoms[name] = a
	return a
}

// Windows returns the number of live windows.
func (d *Display) Windows() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.windows)
}

// Mapped reports whether win is currently mapped.
func (d *Display) Mapped(win platform.WindowID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapped[win]
}

// Title returns the last title set on win.
func (d *Display) Title(win platform.WindowID) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.titles[win]
}

// Protocols returns the WM_PROTOCOLS list registered on win.
func (d *Display) Protocols(win platform.WindowID) []platform.Atom {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]platform.Atom(nil), d.protos[win]...)
}

// DrawingContexts returns the number of live drawing contexts.
func (d *Display) DrawingContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.gcs)
}

// RenderContexts returns the number of live render contexts.
func (d *Display) RenderContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.renders)
}

// Texts returns every string drawn so far.
func (d *Display) Texts() []Text {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Text(nil), d.texts...)
}

// Clears returns the colors passed to ClearRender.
func (d *Display) Clears() [][4]float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][4]float32(nil), d.clears...)
}

// Allocated returns the colors passed to AllocColor.
func (d *Display) Allocated() []color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]color.Color(nil), d.colors...)
}

// Closed reports whether Close has been called.
func (d *Display) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// CloseCount returns how many times Close was called.
func (d *Display) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCnt
}

func (d *Display) Screen() platform.Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Screen")
	return d.ScreenInfo
}

func (d *Display) ChooseVisual(mode platform.Mode) (platform.Visual, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("ChooseVisual", mode); err != nil {
		return platform.Visual{}, err
	}
	if mode == platform.ModeAccelerated {
		return platform.Visual{ID: 0x2b, Depth: 24, Class: 4, DoubleBuffered: true}, nil
	}
	return platform.Visual{ID: d.ScreenInfo.RootVisual, Depth: d.ScreenInfo.RootDepth, Class: 4}, nil
}

func (d *Display) AllocColor(c color.Color) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AllocColor"); err != nil {
		return 0, err
	}
	d.colors = append(d.colors, c)
	r, g, b, _ := c.RGBA()
	return (r>>8)<<16 | (g>>8)<<8 | b>>8, nil
}

func (d *Display) CreateWindow(spec platform.WindowSpec) (platform.WindowID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateWindow", spec.Box.X, spec.Box.Y, spec.Box.Width, spec.Box.Height); err != nil {
		return 0, err
	}
	if d.NullWindow {
		return 0, nil
	}
	win := platform.WindowID(d.allocID())
	d.windows[win] = true
	return win, nil
}

func (d *Display) MapWindow(win platform.WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("MapWindow"); err != nil {
		return err
	}
	d.mapped[win] = true
	return nil
}

func (d *Display) UnmapWindow(win platform.WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("UnmapWindow"); err != nil {
		return err
	}
	d.mapped[win] = false
	return nil
}

func (d *Display) SetTitle(win platform.WindowID, title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetTitle", title); err != nil {
		return err
	}
	d.titles[win] = title
	return nil
}

func (d *Display) InternAtom(name string) (platform.Atom, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("InternAtom", name); err != nil {
		return 0, err
	}
	return d.intern(name), nil
}

func (d *Display) SetProtocols(win platform.WindowID, protocols []platform.Atom) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetProtocols"); err != nil {
		return err
	}
	d.protos[win] = append([]platform.Atom(nil), protocols...)
	return nil
}

// SendClientMessage delivers the message back through NextEvent, the way a
// server routes an event sent to one of the client's own windows.
func (d *Display) SendClientMessage(win platform.WindowID, msgType platform.Atom, data [5]uint32) error {
	d.mu.Lock()
	err := d.record("SendClientMessage")
	d.mu.Unlock()
	if err != nil {
		return err
	}
	d.Push(platform.ClientMessage(win, msgType, data[:]...))
	return nil
}

func (d *Display) CreateDrawingContext(win platform.WindowID, spec platform.GCSpec) (platform.DrawingContext, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateDrawingContext", spec.Font); err != nil {
		return platform.DrawingContext{}, err
	}
	dc := platform.DrawingContext{GC: d.allocID(), Font: d.allocID()}
	d.gcs[dc.GC] = spec
	return dc, nil
}

func (d *Display) SetColors(dc platform.DrawingContext, fg, bg uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetColors", fg, bg); err != nil {
		return err
	}
	spec := d.gcs[dc.GC]
	spec.Foreground, spec.Background = fg, bg
	d.gcs[dc.GC] = spec
	return nil
}

// GCSpec returns the current settings of a drawing context.
func (d *Display) GCSpec(dc platform.DrawingContext) platform.GCSpec {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gcs[dc.GC]
}

func (d *Display) DrawText(win platform.WindowID, dc platform.DrawingContext, x, y int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DrawText", x, y, text); err != nil {
		return err
	}
	d.texts = append(d.texts, Text{Window: win, X: x, Y: y, Text: text})
	return nil
}

func (d *Display) FreeDrawingContext(dc platform.DrawingContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("FreeDrawingContext")
	delete(d.gcs, dc.GC)
}

func (d *Display) CreateRenderContext(win platform.WindowID, vis platform.Visual) (platform.RenderContext, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateRenderContext"); err != nil {
		return platform.RenderContext{}, err
	}
	rc := platform.RenderContext{ID: d.allocID(), Tag: 1, DoubleBuffered: vis.DoubleBuffered, GLVersion: "1.4"}
	d.renders[rc.ID] = true
	return rc, nil
}

func (d *Display) ClearRender(win platform.WindowID, rc platform.RenderContext, rgba [4]float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("ClearRender"); err != nil {
		return err
	}
	d.clears = append(d.clears, rgba)
	return nil
}

func (d *Display) DestroyRenderContext(rc platform.RenderContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DestroyRenderContext")
	delete(d.renders, rc.ID)
}

func (d *Display) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("Flush")
}

// NextEvent returns queued events first, then blocks until Push or Close.
func (d *Display) NextEvent() (platform.Event, error) {
	select {
	case ev := <-d.events:
		return ev, nil
	default:
	}
	select {
	case ev := <-d.events:
		return ev, nil
	case <-d.done:
		return platform.Event{}, platform.ErrClosed
	}
}

func (d *Display) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Close")
	d.closeCnt++
	if !d.closed {
		d.closed = true
		d.windows = make(map[platform.WindowID]bool)
	}
	d.doneOnce.Do(func() { close(d.done) })
}

// Disconnect simulates the server going away: NextEvent starts failing
// while the display is still formally open.
func (d *Display) Disconnect() {
	d.doneOnce.Do(func() { close(d.done) })
}

// Dialer hands out fake displays and remembers every one it opened.
type Dialer struct {
	mu sync.Mutex
	// Err, when set, makes Dial fail.
	Err error
	// Setup runs on each new display before it is returned.
	Setup func(*Display)

	displays []*Display
	names    []string
}

// Dial implements platform.Dialer.
func (f *Dialer) Dial(name string) (platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	if f.Err != nil {
		return nil, f.Err
	}
	d := New()
	if f.Setup != nil {
		f.Setup(d)
	}
	f.displays = append(f.displays, d)
	return d, nil
}

// Displays returns every display opened so far.
func (f *Dialer) Displays() []*Display {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Display(nil), f.displays...)
}

// Last returns the most recently opened display, or nil.
func (f *Dialer) Last() *Display {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.displays) == 0 {
		return nil
	}
	return f.displays[len(f.displays)-1]
}

// Names returns every identifier passed to Dial.
func (f *Dialer) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

// Open returns how many dialed displays are still open.
func (f *Dialer) Open() int {
	n := 0
	for _, d := range f.Displays() {
		if !d.Closed() {
			n++
		}
	}
	return n
}
