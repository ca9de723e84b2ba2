package source

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Supported input formats.
const (
	FormatTM3  = "tm3"
	FormatXML  = "xml"
	FormatJSON = "json"
)

// Default field names for XML and JSON input.
const (
	FieldWeight = "weight"
	FieldValue  = "value"
)

// Options selects the fields that drive weights and values.
type Options struct {
	// WeightField names the field holding leaf weights. Empty means
	// "weight" for XML and JSON, and the first numeric field for TM3.
	WeightField string `json:"weight_field,omitempty"`

	// ValueField names the field presented as a leaf's value. Empty means
	// "value" for XML and JSON, and the weight field for TM3.
	ValueField string `json:"value_field,omitempty"`
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatTM3, FormatXML, FormatJSON}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats() {
		if ext == f {
			return f, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidFormat,
		"cannot infer format of %s (expected .tm3, .xml or .json)", path)
}

// Read parses a tree in the given format.
func Read(r io.Reader, format string, opts Options) (*treemap.Node, error) {
	switch strings.ToLower(format) {
	case FormatTM3:
		return ReadTM3(r, opts)
	case FormatXML:
		return ReadXML(r, opts)
	case FormatJSON:
		return ReadJSON(r, opts)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat,
			"unknown format %q (must be one of: %s)", format, strings.Join(Formats(), ", "))
	}
}

// ReadBytes is Read over an in-memory document.
func ReadBytes(data []byte, format string, opts Options) (*treemap.Node, error) {
	return Read(bytes.NewReader(data), format, opts)
}

// ReadFile opens path, infers its format from the extension and parses it.
// A TM3 root, which has no label of its own, is named after the file.
func ReadFile(path string, opts Options) (*treemap.Node, error) {
	data, format, err := ReadFileData(path)
	if err != nil {
		return nil, err
	}
	root, err := ReadBytes(data, format, opts)
	if err != nil {
		return nil, err
	}
	NameRoot(root, path)
	return root, nil
}

// ReadFileData returns the raw contents of path together with the format
// inferred from its extension. Callers that hash their input use it in place
// of ReadFile.
func ReadFileData(path string) ([]byte, string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", path)
	}
	return data, format, nil
}

// NameRoot labels an unlabeled root after the base name of path.
func NameRoot(root *treemap.Node, path string) {
	if b, ok := root.Value().(*Bean); ok && b.Label == "" {
		b.Label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
}

// addLeaf creates a leaf for bean with the given weight and attaches it.
func addLeaf(parent *treemap.Node, bean *Bean, weight float64) error {
	leaf, err := treemap.NewLeaf(bean, weight)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidWeight, err, "leaf %q", bean.Label)
	}
	return parent.Add(leaf)
}
