package zone

import "testing"

func TestGridSquareOf(t *testing.T) {
	tests := []struct {
		name string
		pos  Vec2
		want GridSquare
	}{
		{"origin", Vec2{X: 0, Y: 0}, GridSquare{X: 0, Y: 0}},
		{"inside first quadrant", Vec2{X: 250, Y: 499}, GridSquare{X: 0, Y: 0}},
		{"just past boundary", Vec2{X: 500, Y: 0}, GridSquare{X: 1, Y: 0}},
		{"negative coordinate", Vec2{X: -1, Y: -1}, GridSquare{X: -1, Y: -1}},
		{"negative on boundary", Vec2{X: -500, Y: 0}, GridSquare{X: -1, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GridSquareOf(tt.pos); got != tt.want {
				t.Errorf("GridSquareOf(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestGridSquareBoundsAndCentre(t *testing.T) {
	sq := GridSquare{X: -1, Y: 2}
	min, max := sq.Bounds()
	wantMin := Vec2{X: -500, Y: 1000}
	wantMax := Vec2{X: 0, Y: 1500}
	if min != wantMin || max != wantMax {
		t.Fatalf("Bounds() = (%v, %v), want (%v, %v)", min, max, wantMin, wantMax)
	}
	wantCentre := Vec2{X: -250, Y: 1250}
	if got := sq.Centre(); got != wantCentre {
		t.Errorf("Centre() = %v, want %v", got, wantCentre)
	}
}

func TestNeighbors8(t *testing.T) {
	sq := GridSquare{X: 0, Y: 0}
	neighbors := sq.Neighbors8()
	if len(neighbors) != 8 {
		t.Fatalf("Neighbors8() returned %d squares, want 8", len(neighbors))
	}
	seen := make(map[GridSquare]bool)
	for _, n := range neighbors {
		if n == sq {
			t.Errorf("Neighbors8() included the square itself: %v", n)
		}
		seen[n] = true
	}
	if len(seen) != 8 {
		t.Errorf("Neighbors8() returned duplicates: %v", neighbors)
	}
}
