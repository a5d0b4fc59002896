package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/pm/internal/canvas"
	"github.com/1broseidon/pm/internal/config"
	"github.com/1broseidon/pm/internal/geometry"
	"github.com/1broseidon/pm/internal/mcp"
	"github.com/1broseidon/pm/internal/platform"
	"github.com/1broseidon/pm/internal/scene"
)

// Where configured text is drawn, relative to the window origin.
var textOrigin = geometry.Point{X: 10, Y: 20}

// applyXAuthority exports the configured XAUTHORITY; the environment is left
// alone when none is configured.
func applyXAuthority(cfg *config.Config) error {
	return mcp.SessionEnv{XAuthority: cfg.XAuthority}.Apply()
}

type runFlags struct {
	configPath string
	display    string
	mode       string
	title      string
	text       string
}

func (f *runFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Config file path (default: $PM_CONFIG or ~/.config/pm/config.yaml)")
	fs.StringVar(&f.display, "display", "", "X display (default: config, then $DISPLAY, then :0)")
	fs.StringVar(&f.mode, "mode", "", "Render mode: 2d or gl (default: config)")
	fs.StringVar(&f.title, "title", "", "Window title (default: config)")
	fs.StringVar(&f.text, "text", "", "Text to draw in the window (default: config)")
}

// apply layers non-empty flags over cfg.
func (f *runFlags) apply(cfg *config.Config) error {
	if f.display != "" {
		cfg.Display = f.display
	}
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.title != "" {
		cfg.Title = f.title
	}
	if f.text != "" {
		cfg.Text = f.text
	}
	return cfg.Validate()
}

func runRun(args []string) int {
	var flags runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pm run [--display D] [--mode 2d|gl] [--title T] [--text S] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a canvas window and process events until the window manager closes it.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(flags.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := res.Config
	if err := flags.apply(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := applyXAuthority(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare X session: %v\n", err)
		return 1
	}
	logger := newLogger(cfg.SlogLevel())

	c, err := newCanvas(cfg, platform.DialX11, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create canvas: %v\n", err)
		return 1
	}
	if err := c.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open canvas: %v\n", err)
		c.Close()
		return 1
	}
	if err := c.Redraw(); err != nil {
		logger.Warn("initial draw failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = c.Run(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted, closing canvas")
		c.Close()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Event loop failed: %v\n", err)
		if !c.Closed() {
			c.Close()
		}
		return 1
	}
}

// newCanvas builds a canvas from cfg. Configured text becomes a label that
// is redrawn on every expose.
func newCanvas(cfg *config.Config, dial platform.Dialer, logger *slog.Logger) (*canvas.Canvas, error) {
	opts, err := canvasOptions(cfg, dial, logger)
	if err != nil {
		return nil, err
	}

	var c *canvas.Canvas
	opts.OnEvent = func(ev platform.Event) {
		if ev.Kind != platform.EventExpose || c == nil {
			return
		}
		if err := c.Redraw(); err != nil {
			logger.Warn("redraw failed", "error", err)
		}
	}

	c, err = canvas.New(dial, opts)
	if err != nil {
		return nil, err
	}
	if cfg.Text != "" {
		c.Add(scene.Label{Text: cfg.Text, At: textOrigin})
	}
	return c, nil
}

func canvasOptions(cfg *config.Config, dial platform.Dialer, logger *slog.Logger) (canvas.Options, error) {
	mode, err := cfg.RenderMode()
	if err != nil {
		return canvas.Options{}, err
	}
	fg, err := cfg.Foreground()
	if err != nil {
		return canvas.Options{}, err
	}
	bg, err := cfg.Background()
	if err != nil {
		return canvas.Options{}, err
	}
	box, err := windowBox(cfg, dial)
	if err != nil {
		return canvas.Options{}, err
	}
	return canvas.Options{
		Display:    cfg.Display,
		Box:        box,
		Mode:       mode,
		Title:      cfg.Title,
		Foreground: fg,
		Background: bg,
		Font:       cfg.Font,
		Logger:     logger,
	}, nil
}

// windowBox returns the configured geometry, centered on the screen when
// window.center is set and the size is explicit.
func windowBox(cfg *config.Config, dial platform.Dialer) (geometry.Box, error) {
	box := cfg.Box()
	if !cfg.Window.Center || box.Width == 0 || box.Height == 0 {
		return box, nil
	}
	center, err := canvas.Center(dial, cfg.Display)
	if err != nil {
		return geometry.Box{}, err
	}
	return box.CenteredAt(center), nil
}

func runCenter(args []string) int {
	fs := flag.NewFlagSet("center", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.String("display", "", "X display (default: $DISPLAY, then :0)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pm center [--display D]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the center point of the default screen as \"x y\".")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	p, err := canvas.Center(platform.DialX11, *display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d %d\n", p.X, p.Y)
	return 0
}
