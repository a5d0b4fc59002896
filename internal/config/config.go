package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/platform"
)

const (
	DefaultTitle    = "pm"
	DefaultFont     = "fixed"
	DefaultLogLevel = "info"
	DefaultWidth    = 640
	DefaultHeight   = 480
)

// WindowConfig is the initial window geometry. A zero width or height means
// the full screen dimension.
type WindowConfig struct {
	X      int  `yaml:"x"`
	Y      int  `yaml:"y"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Center bool `yaml:"center"` // ignore x/y and center on the screen
}

// ColorsConfig holds hex colors such as "#1e1e2e". Empty uses the screen's
// black and white pixels.
type ColorsConfig struct {
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	Display    string       `yaml:"display,omitempty"`
	XAuthority string       `yaml:"xauthority,omitempty"`
	Mode       string       `yaml:"mode"`
	Title      string       `yaml:"title"`
	Text       string       `yaml:"text,omitempty"`
	Font       string       `yaml:"font"`
	Window     WindowConfig `yaml:"window"`
	Colors     ColorsConfig `yaml:"colors"`
	LogLevel   string       `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:  platform.Mode2D.String(),
		Title: DefaultTitle,
		Font:  DefaultFont,
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		LogLevel: DefaultLogLevel,
	}
}

// RenderMode parses the configured mode.
func (c *Config) RenderMode() (platform.Mode, error) {
	return platform.ParseMode(c.Mode)
}

// Box returns the configured window geometry.
func (c *Config) Box() geometry.Box {
	return geometry.NewBox(c.Window.X, c.Window.Y, c.Window.Width, c.Window.Height)
}

// Foreground returns the parsed foreground color, or nil when unset.
func (c *Config) Foreground() (color.Color, error) {
	return parseColor(c.Colors.Foreground)
}

// Background returns the parsed background color, or nil when unset.
func (c *Config) Background() (color.Color, error) {
	return parseColor(c.Colors.Background)
}

func parseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	return c, nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := c.RenderMode(); err != nil {
		return &ValidationError{Path: "mode", Err: err}
	}
	if err := platform.CheckCoord(c.Window.X); err != nil {
		return &ValidationError{Path: "window.x", Err: err}
	}
	if err := platform.CheckCoord(c.Window.Y); err != nil {
		return &ValidationError{Path: "window.y", Err: err}
	}
	if c.Window.Width < 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be >= 0")}
	}
	if err := platform.CheckSize(c.Window.Width); err != nil {
		return &ValidationError{Path: "window.width", Err: err}
	}
	if c.Window.Height < 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be >= 0")}
	}
	if err := platform.CheckSize(c.Window.Height); err != nil {
		return &ValidationError{Path: "window.height", Err: err}
	}
	if strings.TrimSpace(c.Font) == "" {
		return &ValidationError{Path: "font", Err: fmt.Errorf("font must not be empty")}
	}
	if _, err := c.Foreground(); err != nil {
		return &ValidationError{Path: "colors.foreground", Err: err}
	}
	if _, err := c.Background(); err != nil {
		return &ValidationError{Path: "colors.background", Err: err}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// ValidationError points at the offending key, and at its file position
// when the value came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
