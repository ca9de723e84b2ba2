package treemap

import errs "github.com/matzehuels/treemap/pkg/errors"

// Zoom tracks which subtree is displayed.
//
// It has two states: unzoomed, where the true root is displayed, and zoomed
// on a focus node whose bounds have been rewritten to fill the root's
// rectangle. Zoom is single level: zooming while zoomed first returns to the
// root, so there is never a stack of nested zooms.
//
// Bounds are rewritten in place, in viewport coordinates. After ZoomTo the
// caller must run [Layout] on the focus to lay its descendants out inside the
// new rectangle.
type Zoom struct {
	root           *Node
	displayed      *Node
	keepProportion bool
	saved          Rect // focus bounds before the zoom
}

// NewZoom returns an unzoomed controller for root.
func NewZoom(root *Node) *Zoom {
	return &Zoom{root: root, displayed: root}
}

// Root returns the true root.
func (z *Zoom) Root() *Node { return z.root }

// Displayed returns the node currently filling the viewport.
func (z *Zoom) Displayed() *Node { return z.displayed }

// Zoomed reports whether a subtree other than the root is displayed.
func (z *Zoom) Zoomed() bool { return z.displayed != z.root }

// KeepProportion reports whether zooming preserves the focus aspect ratio.
func (z *Zoom) KeepProportion() bool { return z.keepProportion }

// SetKeepProportion chooses between stretching the focus over the root's
// rectangle (false, the default) and scaling it uniformly to fit (true).
// It takes effect at the next ZoomTo or Refresh.
func (z *Zoom) SetKeepProportion(keep bool) { z.keepProportion = keep }

// ZoomTo displays dest in place of the root. Any current zoom is undone
// first. Zooming to nil or to the root is a plain unzoom. dest must belong to
// the root's tree.
func (z *Zoom) ZoomTo(dest *Node) error {
	z.Unzoom()
	if dest == nil || dest == z.root {
		return nil
	}
	if !dest.IsDescendantOf(z.root) {
		return errs.New(errs.ErrCodeNotInTree, "zoom target is not part of the displayed tree")
	}
	z.saved = dest.bounds
	z.displayed = dest
	dest.bounds = z.focusRect(z.saved)
	return nil
}

// Unzoom restores the focus's pre-zoom bounds and displays the root again.
// It does nothing when unzoomed.
func (z *Zoom) Unzoom() {
	if !z.Zoomed() {
		return
	}
	z.displayed.bounds = z.saved
	z.displayed = z.root
}

// Refresh recomputes the focus rectangle after the root's bounds changed,
// for example when the viewport was resized.
func (z *Zoom) Refresh() {
	if z.Zoomed() {
		z.displayed.bounds = z.focusRect(z.saved)
	}
}

// focusRect maps the focus's pre-zoom rectangle onto the root's rectangle.
func (z *Zoom) focusRect(prev Rect) Rect {
	full := z.root.bounds
	if !z.keepProportion || full.Empty() || prev.Empty() {
		return full
	}
	divW := prev.W / full.W
	divH := prev.H / full.H
	if divW >= divH {
		return Rect{X: full.X, Y: full.Y, W: full.W, H: prev.H / divW}
	}
	return Rect{X: full.X, Y: full.Y, W: prev.W / divH, H: full.H}
}
