package x11

import "testing"

func TestResolveDisplay_ExplicitWins(t *testing.T) {
	t.Setenv("DISPLAY", ":7")
	if got := ResolveDisplay(" :3 "); got != ":3" {
		t.Fatalf("ResolveDisplay() = %q, want %q", got, ":3")
	}
}

func TestResolveDisplay_FallsBackToEnv(t *testing.T) {
	t.Setenv("DISPLAY", ":7")
	if got := ResolveDisplay(""); got != ":7" {
		t.Fatalf("ResolveDisplay() = %q, want %q", got, ":7")
	}
}

func TestResolveDisplay_DefaultWhenUnset(t *testing.T) {
	t.Setenv("DISPLAY", "")
	if got := ResolveDisplay(""); got != DefaultDisplay {
		t.Fatalf("ResolveDisplay() = %q, want %q", got, DefaultDisplay)
	}
}

func TestNewConnection_UnreachableDisplay(t *testing.T) {
	display := t.TempDir() + "/:9"
	conn, err := NewConnection(display)
	if err == nil {
		conn.Close()
		t.Fatalf("expected dialing %q to fail", display)
	}
}
