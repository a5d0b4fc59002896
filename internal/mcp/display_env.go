package mcp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/pm/internal/config"
)

// SessionEnv is the X11 session a canvas should connect to.
type SessionEnv struct {
	Display    string
	XAuthority string
}

// sessionHost reads what the host knows about the user's graphical session.
type sessionHost struct {
	uid      int
	run      func(name string, args ...string) ([]byte, error)
	readFile func(name string) ([]byte, error)
	glob     func(pattern string) ([]string, error)
	stat     func(name string) (os.FileInfo, error)
	homeDir  func() (string, error)
}

func currentHost() sessionHost {
	return sessionHost{
		uid: os.Getuid(),
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
		readFile: os.ReadFile,
		glob:     filepath.Glob,
		stat:     os.Stat,
		homeDir:  os.UserHomeDir,
	}
}

// ResolveSessionEnv works out DISPLAY and XAUTHORITY for an MCP server that
// was launched without a GUI environment. Values already in env win, then
// the config, then the user's logind session, then the highest numbered
// socket in /tmp/.X11-unix. Display may still be empty, which leaves the
// choice to the canvas default.
func ResolveSessionEnv(env []string, cfg *config.Config) SessionEnv {
	return currentHost().resolve(env, cfg)
}

func (h sessionHost) resolve(env []string, cfg *config.Config) SessionEnv {
	vars := parseEnv(env)
	s := SessionEnv{Display: vars["DISPLAY"], XAuthority: vars["XAUTHORITY"]}
	if cfg != nil {
		s.fill(cfg.Display, cfg.XAuthority)
	}
	if s.Display == "" || s.XAuthority == "" {
		s.fill(h.logindSession())
	}
	if s.Display == "" {
		s.Display = h.highestSocket()
	}
	if s.XAuthority == "" {
		s.XAuthority = h.homeXAuthority(vars["HOME"])
	}
	return s
}

// fill sets the fields that are still empty.
func (s *SessionEnv) fill(display, xauthority string) {
	if s.Display == "" {
		s.Display = strings.TrimSpace(display)
	}
	if s.XAuthority == "" {
		s.XAuthority = strings.TrimSpace(xauthority)
	}
}

// Apply exports XAUTHORITY so the X client library can authenticate.
func (e SessionEnv) Apply() error {
	if e.XAuthority == "" {
		return nil
	}
	if err := os.Setenv("XAUTHORITY", e.XAuthority); err != nil {
		return fmt.Errorf("set XAUTHORITY: %w", err)
	}
	return nil
}

// logindSession asks logind for the user's primary session and reads
// DISPLAY and XAUTHORITY from the environment of its leader process.
func (h sessionHost) logindSession() (display, xauthority string) {
	out, err := h.run("loginctl", "show-user", strconv.Itoa(h.uid), "--property=Display", "--value")
	if err != nil {
		return "", ""
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", ""
	}

	out, err = h.run("loginctl", "show-session", id, "--property=Display", "--property=Leader")
	if err != nil {
		return "", ""
	}
	props := parseEnv(strings.Split(string(out), "\n"))
	display = props["Display"]

	if leader := props["Leader"]; leader != "" && leader != "0" {
		if data, err := h.readFile(filepath.Join("/proc", leader, "environ")); err == nil {
			leaderEnv := parseEnv(strings.Split(string(data), "\x00"))
			if d := leaderEnv["DISPLAY"]; d != "" {
				display = d
			}
			xauthority = leaderEnv["XAUTHORITY"]
		}
	}
	if strings.EqualFold(display, "n/a") {
		display = ""
	}
	return display, xauthority
}

func (h sessionHost) highestSocket() string {
	paths, err := h.glob("/tmp/.X11-unix/X*")
	if err != nil {
		return ""
	}
	best := -1
	for _, path := range paths {
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "X"))
		if err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		return ""
	}
	return ":" + strconv.Itoa(best)
}

func (h sessionHost) homeXAuthority(home string) string {
	if home == "" {
		if dir, err := h.homeDir(); err == nil {
			home = dir
		}
	}
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".Xauthority")
	if _, err := h.stat(path); err != nil {
		return ""
	}
	return path
}

// parseEnv turns KEY=value lines into a map. Later keys win; values are
// trimmed.
func parseEnv(lines []string) map[string]string {
	vars := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = strings.TrimSpace(value)
	}
	return vars
}
