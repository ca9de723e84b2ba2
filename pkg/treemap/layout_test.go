package treemap

import (
	"math"
	"testing"
)

// rows stacks items top to bottom in proportion to weight.
var rows = StrategyFunc(func(r Rect, weights []float64) []Rect {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := make([]Rect, len(weights))
	y := r.Y
	for i, w := range weights {
		h := 0.0
		if total > 0 {
			h = r.H * w / total
		}
		out[i] = Rect{X: r.X, Y: y, W: r.W, H: h}
		y += h
	}
	return out
})

func TestLayout_Border(t *testing.T) {
	root := NewBranch("root")
	top := MustLeaf("top", 1)
	bottom := MustLeaf("bottom", 1)
	_ = root.Add(top)
	_ = root.Add(bottom)
	root.SetBounds(Rect{W: 100, H: 100})

	Layout(root, rows, 3)

	if want := (Rect{X: 3, Y: 3, W: 94, H: 45.5}); top.Bounds() != want {
		t.Errorf("top = %+v, want %+v", top.Bounds(), want)
	}
	if want := (Rect{X: 3, Y: 51.5, W: 94, H: 45.5}); bottom.Bounds() != want {
		t.Errorf("bottom = %+v, want %+v", bottom.Bounds(), want)
	}
	if gap := bottom.Bounds().Y - top.Bounds().Bottom(); gap != 3 {
		t.Errorf("gap between siblings = %v, want 3", gap)
	}
}

func TestLayout_Containment(t *testing.T) {
	root := NewBranch("root")
	for i := 0; i < 3; i++ {
		g := NewBranch(i)
		_ = root.Add(g)
		for j := 1; j <= 4; j++ {
			_ = g.Add(MustLeaf(j, float64(j)))
		}
	}
	root.SetBounds(Rect{X: 5, Y: 5, W: 300, H: 200})

	for _, border := range []float64{0, 1, 3} {
		Layout(root, rows, border)
		root.Walk(func(n *Node) bool {
			for _, c := range n.Children() {
				if !n.Bounds().Inset(border).ContainsRect(c.Bounds(), 1e-9) {
					t.Errorf("border %v: child %+v escapes parent content %+v", border, c.Bounds(), n.Bounds().Inset(border))
				}
			}
			return true
		})
	}
}

func TestLayout_ZeroBorderTilesExactly(t *testing.T) {
	root := NewBranch("root")
	for _, w := range []float64{1, 2, 5} {
		_ = root.Add(MustLeaf(w, w))
	}
	root.SetBounds(Rect{W: 80, H: 80})
	Layout(root, rows, 0)

	area := 0.0
	for _, c := range root.Children() {
		area += c.Bounds().Area()
	}
	if math.Abs(area-6400) > 1e-9 {
		t.Errorf("children cover %v, want 6400", area)
	}
}

func TestLayout_ZeroWeightCollapses(t *testing.T) {
	root := NewBranch("root")
	empty := NewBranch("empty")
	leaf := MustLeaf("zero", 0)
	_ = root.Add(empty)
	_ = empty.Add(leaf)
	_ = root.Add(MustLeaf("full", 1))
	root.SetBounds(Rect{W: 100, H: 100})

	Layout(root, rows, 0)

	if !empty.Bounds().Empty() || !leaf.Bounds().Empty() {
		t.Errorf("zero-weight subtree got area: %+v, %+v", empty.Bounds(), leaf.Bounds())
	}
	if got, ok := root.HitTest(50, 0); !ok || got.Value() != "full" {
		t.Errorf("HitTest(50, 0) = %v, want full", got)
	}
}

func TestLayout_ShortStrategyOutput(t *testing.T) {
	root := NewBranch("root")
	a := MustLeaf("a", 1)
	b := MustLeaf("b", 1)
	_ = root.Add(a)
	_ = root.Add(b)
	root.SetBounds(Rect{W: 10, H: 10})

	one := StrategyFunc(func(r Rect, _ []float64) []Rect { return []Rect{r} })
	Layout(root, one, 0)

	if a.Bounds() != root.Bounds() {
		t.Errorf("a = %+v, want the whole rect", a.Bounds())
	}
	if !b.Bounds().Empty() {
		t.Errorf("b = %+v, want empty", b.Bounds())
	}
}
