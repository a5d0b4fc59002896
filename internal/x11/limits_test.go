package x11

import (
	"errors"
	"strings"
	"testing"
)

func TestWireGeometry(t *testing.T) {
	tests := []struct {
		name                string
		x, y, width, height int
		wantErr             string
	}{
		{name: "typical", x: 10, y: 20, width: 640, height: 480},
		{name: "limits", x: -32768, y: 32767, width: 65535, height: 1},
		{name: "x wraps", x: 40000, y: 0, width: 10, height: 10, wantErr: "x 40000"},
		{name: "y wraps", x: 0, y: -32769, width: 10, height: 10, wantErr: "y -32769"},
		{name: "width wraps", x: 0, y: 0, width: 70000, height: 10, wantErr: "width 70000"},
		{name: "height wraps", x: 0, y: 0, width: 10, height: 65536, wantErr: "height 65536"},
		{name: "negative width", x: 0, y: 0, width: -1, height: 10, wantErr: "width -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h, err := wireGeometry(tt.x, tt.y, tt.width, tt.height)
			if tt.wantErr != "" {
				if !errors.Is(err, ErrOutOfRange) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("wireGeometry error = %v, want ErrOutOfRange mentioning %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("wireGeometry error: %v", err)
			}
			if int(x) != tt.x || int(y) != tt.y || int(w) != tt.width || int(h) != tt.height {
				t.Fatalf("wireGeometry = (%d,%d,%d,%d), want (%d,%d,%d,%d)", x, y, w, h, tt.x, tt.y, tt.width, tt.height)
			}
		})
	}
}

func TestText8(t *testing.T) {
	long := strings.Repeat("a", 254) + "é" + "tail"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "hello", want: "hello"},
		{name: "latin-1", in: "café", want: "caf\xe9"},
		{name: "outside latin-1", in: "日本", want: "??"},
		{name: "invalid utf-8", in: "a\xffb", want: "a?b"},
		{name: "cut after whole rune", in: long, want: strings.Repeat("a", 254) + "\xe9"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := text8(tt.in)
			if got != tt.want {
				t.Fatalf("text8(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) > maxText8 {
				t.Fatalf("text8 produced %d bytes", len(got))
			}
		})
	}
}
