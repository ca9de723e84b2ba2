package treemap_test

import (
	"fmt"

	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

func Example() {
	root := treemap.NewBranch("disk")
	_ = root.Add(treemap.MustLeaf("photos", 50))
	_ = root.Add(treemap.MustLeaf("music", 30))
	_ = root.Add(treemap.MustLeaf("docs", 20))

	m := treemap.NewMap(root, split.Squarified{})
	_ = m.SetBorder(0)
	m.SetViewport(treemap.Rect{W: 100, H: 100})
	_ = m.Layout()

	for _, leaf := range root.Leaves() {
		b := leaf.Bounds()
		fmt.Printf("%s: %.0fx%.0f at (%.0f,%.0f)\n", leaf.Value(), b.W, b.H, b.X, b.Y)
	}
	// Output:
	// photos: 100x50 at (0,0)
	// music: 60x50 at (0,50)
	// docs: 40x50 at (60,50)
}

func ExampleMap_ZoomTo() {
	root := treemap.NewBranch("root")
	group := treemap.NewBranch("group")
	_ = root.Add(group)
	_ = group.Add(treemap.MustLeaf("a", 1))
	_ = group.Add(treemap.MustLeaf("b", 1))
	_ = root.Add(treemap.MustLeaf("c", 2))

	m := treemap.NewMap(root, split.Slice{})
	_ = m.SetBorder(0)
	m.SetViewport(treemap.Rect{W: 200, H: 100})
	_ = m.Layout()

	_ = m.ZoomTo(group)
	_ = m.Layout()
	if leaf, ok := m.Hit(150, 50); ok {
		fmt.Println("hit", leaf.Value())
	}

	m.Unzoom()
	_ = m.Layout()
	if leaf, ok := m.Hit(150, 50); ok {
		fmt.Println("hit", leaf.Value())
	}
	// Output:
	// hit b
	// hit c
}
