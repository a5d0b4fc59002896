package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML path and where it
// came from.
//
// Supported paths:
//
//	display
//	xauthority
//	mode
//	title
//	text
//	font
//	log_level
//	window.x, window.y, window.width, window.height, window.center
//	colors.foreground, colors.background
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	case "mode":
		return cfg.Mode, nil
	case "title":
		return cfg.Title, nil
	case "text":
		return cfg.Text, nil
	case "font":
		return cfg.Font, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "window":
		return cfg.Window, nil
	case "window.x":
		return cfg.Window.X, nil
	case "window.y":
		return cfg.Window.Y, nil
	case "window.width":
		return cfg.Window.Width, nil
	case "window.height":
		return cfg.Window.Height, nil
	case "window.center":
		return cfg.Window.Center, nil
	case "colors":
		return cfg.Colors, nil
	case "colors.foreground":
		return cfg.Colors.Foreground, nil
	case "colors.background":
		return cfg.Colors.Background, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
