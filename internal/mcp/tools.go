package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pm/internal/canvas"
	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/scene"
)

func (s *Server) do(ctx context.Context, tool string, fn func(*canvas.Canvas) error) error {
	err := s.canvas.Do(ctx, fn)
	if err != nil {
		s.logger.Warn("tool failed", "tool", tool, "error", err)
		return fmt.Errorf("%s: %w", tool, err)
	}
	s.logger.Debug("tool done", "tool", tool)
	return nil
}

func (s *Server) handleCanvasStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, _ CanvasStatusInput) (*mcpsdk.CallToolResult, CanvasStatusOutput, error) {
	out := CanvasStatusOutput{
		Display: s.canvas.Display(),
		Mode:    s.canvas.Mode().String(),
		Window:  uint32(s.canvas.Window()),
		Closed:  s.canvas.Closed(),
	}
	if out.Closed {
		out.Phase = "closed"
		return nil, out, nil
	}
	err := s.do(ctx, "canvas_status", func(c *canvas.Canvas) error {
		box := c.Box()
		st := c.State()
		out.Phase = c.Phase()
		out.Mapped = c.Mapped()
		out.Box = BoxInfo{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
		out.ScreenWidth = st.ScreenWidth
		out.ScreenHeight = st.ScreenHeight
		out.Children = c.Children()
		return nil
	})
	if err != nil {
		return nil, CanvasStatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleDrawText(ctx context.Context, _ *mcpsdk.CallToolRequest, args DrawTextInput) (*mcpsdk.CallToolResult, DrawTextOutput, error) {
	if strings.TrimSpace(args.Text) == "" {
		return nil, DrawTextOutput{}, fmt.Errorf("text is required")
	}
	var out DrawTextOutput
	err := s.do(ctx, "draw_text", func(c *canvas.Canvas) error {
		label := scene.Label{Text: args.Text, At: geometry.Point{X: args.X, Y: args.Y}}
		if err := label.Draw(c); err != nil {
			return err
		}
		c.Add(label)
		out.Drawn = true
		out.Children = c.Children()
		return nil
	})
	if err != nil {
		return nil, DrawTextOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSetTitle(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, SetTitleOutput, error) {
	err := s.do(ctx, "set_title", func(c *canvas.Canvas) error {
		if err := c.SetTitle(args.Title); err != nil {
			return err
		}
		return c.Flush()
	})
	if err != nil {
		return nil, SetTitleOutput{}, err
	}
	return nil, SetTitleOutput{Title: args.Title}, nil
}

func (s *Server) handleShowWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, _ VisibilityInput) (*mcpsdk.CallToolResult, VisibilityOutput, error) {
	return s.setVisible(ctx, "show_window", true)
}

func (s *Server) handleHideWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, _ VisibilityInput) (*mcpsdk.CallToolResult, VisibilityOutput, error) {
	return s.setVisible(ctx, "hide_window", false)
}

func (s *Server) setVisible(ctx context.Context, tool string, visible bool) (*mcpsdk.CallToolResult, VisibilityOutput, error) {
	var out VisibilityOutput
	err := s.do(ctx, tool, func(c *canvas.Canvas) error {
		var err error
		if visible {
			err = c.Show()
		} else {
			err = c.Hide()
		}
		if err != nil {
			return err
		}
		out.Mapped = c.Mapped()
		return c.Flush()
	})
	if err != nil {
		return nil, VisibilityOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleCloseCanvas(ctx context.Context, _ *mcpsdk.CallToolRequest, _ CloseCanvasInput) (*mcpsdk.CallToolResult, CloseCanvasOutput, error) {
	err := s.do(ctx, "close_canvas", func(c *canvas.Canvas) error {
		return c.RequestClose()
	})
	if err != nil {
		return nil, CloseCanvasOutput{}, err
	}
	return nil, CloseCanvasOutput{Requested: true}, nil
}

func (s *Server) handleScreenCenter(_ context.Context, _ *mcpsdk.CallToolRequest, args ScreenCenterInput) (*mcpsdk.CallToolResult, ScreenCenterOutput, error) {
	display := strings.TrimSpace(args.Display)
	if display == "" {
		display = s.canvas.Display()
	}
	p, err := canvas.Center(s.dial, display)
	if err != nil {
		s.logger.Warn("tool failed", "tool", "screen_center", "error", err)
		return nil, ScreenCenterOutput{}, fmt.Errorf("screen_center: %w", err)
	}
	return nil, ScreenCenterOutput{Display: display, X: p.X, Y: p.Y}, nil
}
