package geometry

import "testing"

func TestNewBoxCorners(t *testing.T) {
	tests := []struct {
		name                string
		x, y, width, height int
	}{
		{"origin", 0, 0, 640, 480},
		{"offset", 100, 50, 20, 10},
		{"negative origin", -30, -40, 15, 25},
		{"zero size", 7, 9, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBox(tt.x, tt.y, tt.width, tt.height)
			if got, want := b.TopLeft(), (Point{tt.x, tt.y}); got != want {
				t.Fatalf("TopLeft() = %+v, want %+v", got, want)
			}
			if got, want := b.BottomRight(), (Point{tt.x + tt.width, tt.y + tt.height}); got != want {
				t.Fatalf("BottomRight() = %+v, want %+v", got, want)
			}
			if got, want := b.TopRight(), (Point{tt.x + tt.width, tt.y}); got != want {
				t.Fatalf("TopRight() = %+v, want %+v", got, want)
			}
			if got, want := b.BottomLeft(), (Point{tt.x, tt.y + tt.height}); got != want {
				t.Fatalf("BottomLeft() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestNewBoxClampsNegativeSize(t *testing.T) {
	b := NewBox(10, 10, -5, -1)
	if b.Width != 0 || b.Height != 0 {
		t.Fatalf("expected negative sizes to clamp to 0, got %dx%d", b.Width, b.Height)
	}
	if b.BottomRight() != b.TopLeft() {
		t.Fatalf("clamped box corners differ: %+v vs %+v", b.TopLeft(), b.BottomRight())
	}
}

func TestCenterUsesIntegerDivision(t *testing.T) {
	tests := []struct {
		width, height int
		want          Point
	}{
		{1920, 1080, Point{960, 540}},
		{1921, 1081, Point{960, 540}},
		{1, 1, Point{0, 0}},
	}
	for _, tt := range tests {
		got := NewBox(0, 0, tt.width, tt.height).Center()
		if got != tt.want {
			t.Errorf("Center() of %dx%d = %+v, want %+v", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestCenteredAt(t *testing.T) {
	b := NewBox(0, 0, 200, 100).CenteredAt(Point{960, 540})
	if b.X != 860 || b.Y != 490 {
		t.Fatalf("CenteredAt origin = (%d,%d), want (860,490)", b.X, b.Y)
	}
	if b.Center() != (Point{960, 540}) {
		t.Fatalf("CenteredAt center = %+v", b.Center())
	}
}
