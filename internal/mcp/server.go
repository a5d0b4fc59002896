package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pm/internal/canvas"
	"github.com/1broseidon/pm/internal/platform"
)

const (
	ServerName    = "pm"
	ServerVersion = "0.1.0"
)

// Server exposes a running canvas as MCP tools. Every tool that touches the
// canvas is sequenced onto the canvas event loop with Canvas.Do.
type Server struct {
	mcpServer *mcpsdk.Server
	canvas    *canvas.Canvas
	dial      platform.Dialer
	logger    *slog.Logger
}

// NewServer creates an MCP server for c. dial is used for transient screen
// queries.
func NewServer(c *canvas.Canvas, dial platform.Dialer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		canvas: c,
		dial:   dial,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "canvas_status",
		Description: "Report the canvas display, render mode, lifecycle phase, window geometry and whether the window is mapped.",
	}, s.handleCanvasStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "draw_text",
		Description: "Draw a string on the canvas at the given baseline origin. The text is kept as a label and redrawn when the window is exposed.",
	}, s.handleDrawText)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_title",
		Description: "Set the canvas window title.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_window",
		Description: "Map the canvas window. Does nothing if it is already shown.",
	}, s.handleShowWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_window",
		Description: "Unmap the canvas window. Does nothing if it is already hidden.",
	}, s.handleHideWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_canvas",
		Description: "Ask the canvas to close, exactly as a window manager close button does (WM_DELETE_WINDOW). The event loop then releases all resources.",
	}, s.handleCloseCanvas)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screen_center",
		Description: "Return the center point of the default screen of an X display, using a short-lived connection.",
	}, s.handleScreenCenter)
}
