package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/pm/internal/mcp"
	"github.com/1broseidon/pm/internal/platform"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pm mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Open a canvas and start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pm mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: pm mcp serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Open a canvas window and expose it as MCP tools on stdio. Designed to be")
		fmt.Fprintln(os.Stdout, "invoked by MCP clients, which often start servers without DISPLAY; the")
		fmt.Fprintln(os.Stdout, "X session is then detected from logind or /tmp/.X11-unix.")
		return 0
	}

	res, err := loadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := res.Config

	session := mcp.ResolveSessionEnv(os.Environ(), cfg)
	if err := session.Apply(); err != nil {
		log.Fatalf("Failed to prepare X session: %v", err)
	}
	cfg.Display = session.Display
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
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := c.Start(ctx)
	server := mcp.NewServer(c, platform.DialX11, logger)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx)
	}()

	var loopErr, serverErr error
	select {
	case loopErr = <-loopDone:
		cancel()
		serverErr = <-serverDone
	case serverErr = <-serverDone:
		cancel()
		loopErr = <-loopDone
	}
	if !c.Closed() {
		c.Close()
	}

	code := 0
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		logger.Error("event loop failed", "error", loopErr)
		code = 1
	}
	if serverErr != nil && !errors.Is(serverErr, context.Canceled) && !errors.Is(serverErr, io.EOF) {
		logger.Error("MCP server error", "error", serverErr)
		code = 1
	}
	return code
}
