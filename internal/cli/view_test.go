package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/treemap/pkg/color"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

const diskJSON = `{
  "label": "disk",
  "children": [
    {"label": "photos", "children": [
      {"label": "a.jpg", "weight": 120, "value": 3},
      {"label": "b.jpg", "weight": 80, "value": 5}
    ]},
    {"label": "notes", "weight": 10}
  ]
}`

// testViewer returns a viewer over diskJSON sized to a 40x12 terminal, which
// leaves a 40x10 map. With the slice strategy photos spans x in [0, 38.1).
func testViewer(t *testing.T) *viewModel {
	t.Helper()
	ctx := context.Background()
	opts := pipeline.Options{
		Data:     []byte(diskJSON),
		Format:   "json",
		Strategy: split.NameSlice,
		Border:   pipeline.Float(0),
		Width:    1,
		Height:   1,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	r := pipeline.NewRunner(nil, nil, nil)
	root, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	m, err := r.BuildMap(ctx, root, opts)
	if err != nil {
		t.Fatal(err)
	}
	colors, err := color.ByName(opts.Color, opts.Provider())
	if err != nil {
		t.Fatal(err)
	}
	v := newViewModel(ctx, m, opts.Provider(), colors, opts.Strategy)
	v.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	return v
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewResize(t *testing.T) {
	v := testViewer(t)
	if vp := v.m.Viewport(); vp.W != 40 || vp.H != 10 {
		t.Errorf("viewport = %+v, want 40x10", vp)
	}
	if v.m.Dirty() {
		t.Error("map should be laid out after resize")
	}
}

func TestViewHover(t *testing.T) {
	v := testViewer(t)
	v.Update(tea.MouseMsg{X: 39, Y: 5, Action: tea.MouseActionMotion})
	leaf := v.m.ActiveLeaf()
	if leaf == nil || v.provider.Label(leaf) != "notes" {
		t.Fatalf("active leaf = %v, want notes", leaf)
	}

	// arrow keys move the cursor left into photos/b.jpg
	v.Update(tea.KeyMsg{Type: tea.KeyLeft})
	v.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if leaf := v.m.ActiveLeaf(); leaf == nil || v.provider.Label(leaf) != "b.jpg" {
		t.Fatalf("active leaf after moving = %v, want b.jpg", leaf)
	}
}

func TestViewZoom(t *testing.T) {
	v := testViewer(t)
	photos, err := source.Find(v.m.Root(), v.provider, "photos")
	if err != nil {
		t.Fatal(err)
	}

	v.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v.m.Displayed() != photos {
		t.Fatalf("displayed = %v, want photos", v.provider.Label(v.m.Displayed()))
	}
	if b := photos.Bounds(); b.W != 40 || b.H != 10 {
		t.Errorf("zoomed bounds = %+v, want the full viewport", b)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.m.Zoom().Zoomed() {
		t.Fatal("esc should unzoom")
	}

	// enter zooms at the keyboard cursor
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if v.m.Displayed() != photos {
		t.Fatal("enter should zoom into photos")
	}
	v.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	if v.m.Zoom().Zoomed() {
		t.Fatal("right click should unzoom")
	}
}

func TestViewStrategyAndProportion(t *testing.T) {
	v := testViewer(t)

	v.Update(runes("s"))
	want := split.Next(split.NameSlice)
	if v.strategy != want || split.NameOf(v.m.Strategy()) != want {
		t.Errorf("strategy = %s (map %s), want %s", v.strategy, split.NameOf(v.m.Strategy()), want)
	}
	if v.m.Dirty() {
		t.Error("strategy change should relayout")
	}

	v.Update(runes("p"))
	if !v.m.Zoom().KeepProportion() {
		t.Error("p should enable keep-proportion")
	}
	v.Update(runes("p"))
	if v.m.Zoom().KeepProportion() {
		t.Error("p should toggle keep-proportion off")
	}
}

func TestViewQuit(t *testing.T) {
	v := testViewer(t)
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := v.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected a quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", msg)
		}
	}
}

func TestViewRender(t *testing.T) {
	v := testViewer(t)
	out := v.View()
	for _, want := range []string{"a.jpg", "b.jpg", "disk", split.NameSlice, "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 12 {
		t.Errorf("view has %d lines, want 12", lines)
	}

	empty := newViewModel(context.Background(), v.m, v.provider, v.colors, v.strategy)
	if got := empty.View(); got != "loading..." {
		t.Errorf("unsized view = %q", got)
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"abc", 1, "a"},
		{"abc", 3, "abc"},
	}
	for _, tt := range tests {
		if got := fitLabel(tt.in, tt.n); got != tt.want {
			t.Errorf("fitLabel(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
