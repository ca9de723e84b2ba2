package source

import (
	"strings"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Find resolves a slash-separated label path below root, for example
// "photos/2024". Labels come from p. The empty path and "/" name the root
// itself. When several siblings share a label the first one wins.
func Find(root *treemap.Node, p treemap.Provider, path string) (*treemap.Node, error) {
	if strings.Trim(path, "/") == "" {
		return root, nil
	}
	if err := errs.ValidateNodePath(path); err != nil {
		return nil, err
	}

	n := root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		next := childByLabel(n, p, seg)
		if next == nil {
			return nil, errs.New(errs.ErrCodeNotFound, "no node %q under %q", seg, PathOf(n, p))
		}
		n = next
	}
	return n, nil
}

// PathOf returns the label path from the root's child down to n, the inverse
// of Find. The root's path is "".
func PathOf(n *treemap.Node, p treemap.Provider) string {
	nodes := n.Path()
	labels := make([]string, 0, len(nodes))
	for _, m := range nodes[1:] {
		labels = append(labels, p.Label(m))
	}
	return strings.Join(labels, "/")
}

func childByLabel(n *treemap.Node, p treemap.Provider, label string) *treemap.Node {
	for _, c := range n.Children() {
		if p.Label(c) == label {
			return c
		}
	}
	return nil
}
