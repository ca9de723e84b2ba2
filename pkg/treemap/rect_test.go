package treemap

import (
	"math"
	"testing"
)

func TestRect_Inset(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		d    float64
		want Rect
	}{
		{"zero", Rect{X: 1, Y: 2, W: 10, H: 20}, 0, Rect{X: 1, Y: 2, W: 10, H: 20}},
		{"normal", Rect{W: 10, H: 20}, 2, Rect{X: 2, Y: 2, W: 6, H: 16}},
		{"collapsed width", Rect{W: 4, H: 20}, 3, Rect{X: 2, Y: 3, W: 0, H: 14}},
		{"collapsed both", Rect{W: 4, H: 4}, 5, Rect{X: 2, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Inset(tt.d); got != tt.want {
				t.Errorf("Inset(%v) = %+v, want %+v", tt.d, got, tt.want)
			}
		})
	}
}

func TestRect_Geometry(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 10}

	if r.Right() != 40 || r.Bottom() != 30 {
		t.Errorf("Right/Bottom = %v/%v, want 40/30", r.Right(), r.Bottom())
	}
	if x, y := r.Center(); x != 25 || y != 25 {
		t.Errorf("Center() = %v,%v, want 25,25", x, y)
	}
	if r.Aspect() != 3 {
		t.Errorf("Aspect() = %v, want 3", r.Aspect())
	}
	if !r.Landscape() {
		t.Error("Landscape() = false")
	}
	if !r.Contains(10, 20) || !r.Contains(40, 30) || r.Contains(41, 25) {
		t.Error("Contains() should include edges only")
	}
	if got := r.Overlap(Rect{X: 30, Y: 25, W: 100, H: 100}); got != 50 {
		t.Errorf("Overlap() = %v, want 50", got)
	}
	if got := r.Overlap(Rect{X: 40, Y: 20, W: 5, H: 5}); got != 0 {
		t.Errorf("touching Overlap() = %v, want 0", got)
	}
	if !r.Intersects(Rect{X: 30, Y: 25, W: 100, H: 100}) || r.Intersects(Rect{X: 40, Y: 20, W: 5, H: 5}) {
		t.Error("Intersects() should need a shared area")
	}
	if !math.IsInf((Rect{W: 5}).Aspect(), 1) {
		t.Error("empty Aspect() should be +Inf")
	}
}
