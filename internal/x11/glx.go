package x11

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/glx"
	"github.com/BurntSushi/xgb/xproto"
)

// minVisualProps is the number of fixed properties at the head of every
// visual in a GetVisualConfigs reply.
const minVisualProps = 18

const (
	propVisualID     = 0
	propClass        = 1
	propRGBA         = 2
	propDoubleBuffer = 11
)

const (
	glColorBufferBit = 0x4000
	glVersion        = 0x1F02
)

// GLX render command opcodes.
const (
	opClear      = 127
	opClearColor = 130
)

// ErrNoGLXVisual is returned when no visual supports RGBA rendering.
var ErrNoGLXVisual = errors.New("no RGBA GLX visual on screen")

// GLVisual is a GLX capable visual.
type GLVisual struct {
	ID             xproto.Visualid
	Depth          byte
	Class          byte
	DoubleBuffered bool
}

// RenderTable is the set of render commands a context accepts, resolved
// once the context is current.
type RenderTable struct {
	Version    string
	clear      uint16
	clearColor uint16
}

// GLContext is an indirect GLX context made current on a window.
type GLContext struct {
	ID     glx.Context
	Tag    glx.ContextTag
	Window xproto.Window
	Double bool
	Table  RenderTable
}

func (c *Connection) initGLX() error {
	if c.glxReady {
		return nil
	}
	if err := glx.Init(c.Conn()); err != nil {
		return fmt.Errorf("GLX extension unavailable: %w", err)
	}
	version, err := glx.QueryVersion(c.Conn(), 1, 4).Reply()
	if err != nil {
		return fmt.Errorf("GLX version query failed: %w", err)
	}
	if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 2) {
		return fmt.Errorf("GLX %d.%d is too old", version.MajorVersion, version.MinorVersion)
	}
	c.glxReady = true
	return nil
}

// ChooseGLVisual picks the first RGBA TrueColor/DirectColor visual,
// preferring double-buffered ones.
func (c *Connection) ChooseGLVisual() (GLVisual, error) {
	if err := c.initGLX(); err != nil {
		return GLVisual{}, err
	}

	reply, err := glx.GetVisualConfigs(c.Conn(), uint32(c.ScreenNumber())).Reply()
	if err != nil {
		return GLVisual{}, fmt.Errorf("failed to list GLX visuals: %w", err)
	}

	perVisual := int(reply.NumProperties)
	if perVisual < minVisualProps {
		return GLVisual{}, fmt.Errorf("GLX visual configs carry %d properties, want >= %d", perVisual, minVisualProps)
	}

	var single *GLVisual
	for i := 0; i < int(reply.NumVisuals); i++ {
		start := i * perVisual
		if start+perVisual > len(reply.PropertyList) {
			break
		}
		props := reply.PropertyList[start : start+perVisual]

		class := byte(props[propClass])
		if props[propRGBA] == 0 {
			continue
		}
		if class != xproto.VisualClassTrueColor && class != xproto.VisualClassDirectColor {
			continue
		}
		id := xproto.Visualid(props[propVisualID])
		_, depth, ok := c.FindVisual(id)
		if !ok {
			continue
		}

		vis := GLVisual{ID: id, Depth: depth, Class: class, DoubleBuffered: props[propDoubleBuffer] != 0}
		if vis.DoubleBuffered {
			return vis, nil
		}
		if single == nil {
			single = &vis
		}
	}
	if single != nil {
		return *single, nil
	}
	return GLVisual{}, ErrNoGLXVisual
}

// CreateGLContext creates an indirect context for vis, makes it current on
// win and resolves its render table. Nothing is left allocated when it fails.
func (c *Connection) CreateGLContext(win xproto.Window, vis GLVisual) (*GLContext, error) {
	if err := c.initGLX(); err != nil {
		return nil, err
	}
	conn := c.Conn()

	id, err := glx.NewContextId(conn)
	if err != nil {
		return nil, err
	}
	err = glx.CreateContextChecked(conn, id, vis.ID, uint32(c.ScreenNumber()), 0, false).Check()
	if err != nil {
		return nil, fmt.Errorf("glXCreateContext failed: %w", err)
	}

	current, err := glx.MakeCurrent(conn, glx.Drawable(win), id, 0).Reply()
	if err != nil {
		glx.DestroyContext(conn, id)
		return nil, fmt.Errorf("glXMakeCurrent failed: %w", err)
	}

	table, err := c.resolveRenderTable(current.ContextTag)
	if err != nil {
		glx.MakeCurrent(conn, 0, 0, current.ContextTag)
		glx.DestroyContext(conn, id)
		return nil, err
	}

	return &GLContext{
		ID:     id,
		Tag:    current.ContextTag,
		Window: win,
		Double: vis.DoubleBuffered,
		Table:  table,
	}, nil
}

// resolveRenderTable asks the current context for its GL version. The clear
// commands exist from GL 1.0 on, so a context that reports a version can
// encode them.
func (c *Connection) resolveRenderTable(tag glx.ContextTag) (RenderTable, error) {
	reply, err := glx.GetString(c.Conn(), tag, glVersion).Reply()
	if err != nil {
		return RenderTable{}, fmt.Errorf("glGetString(GL_VERSION) failed: %w", err)
	}
	return renderTableFor(reply.String)
}

func renderTableFor(version string) (RenderTable, error) {
	version = strings.TrimRight(version, "\x00")
	major, _, ok := strings.Cut(version, ".")
	if !ok {
		return RenderTable{}, fmt.Errorf("unrecognised GL version %q", version)
	}
	if n, err := strconv.Atoi(major); err != nil || n < 1 {
		return RenderTable{}, fmt.Errorf("unrecognised GL version %q", version)
	}
	return RenderTable{Version: version, clear: opClear, clearColor: opClearColor}, nil
}

// encodeClear builds the render commands for glClearColor + glClear.
func encodeClear(table RenderTable, rgba [4]float32) []byte {
	cmds := make([]byte, 28)

	xgb.Put16(cmds[0:], 20)
	xgb.Put16(cmds[2:], table.clearColor)
	for i, v := range rgba {
		xgb.Put32(cmds[4+4*i:], math.Float32bits(v))
	}

	xgb.Put16(cmds[20:], 8)
	xgb.Put16(cmds[22:], table.clear)
	xgb.Put32(cmds[24:], glColorBufferBit)
	return cmds
}

// Clear clears the color buffer to rgba, flushes the pipeline and swaps
// when the context is double-buffered.
func (c *Connection) Clear(ctx *GLContext, rgba [4]float32) error {
	conn := c.Conn()
	if err := glx.RenderChecked(conn, ctx.Tag, encodeClear(ctx.Table, rgba)).Check(); err != nil {
		return fmt.Errorf("glx render failed: %w", err)
	}
	glx.Flush(conn, ctx.Tag)
	if ctx.Double {
		glx.SwapBuffers(conn, ctx.Tag, glx.Drawable(ctx.Window))
	}
	return nil
}

// DestroyGLContext releases the current binding and then the context.
func (c *Connection) DestroyGLContext(ctx *GLContext) {
	if ctx == nil || ctx.ID == 0 {
		return
	}
	conn := c.Conn()
	glx.MakeCurrent(conn, 0, 0, ctx.Tag)
	glx.DestroyContext(conn, ctx.ID)
}
