package source

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

func label(n *treemap.Node) string { return BeanProvider{}.Label(n) }

func labels(nodes []*treemap.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = label(n)
	}
	return out
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		file      string
		rootLabel string
		weight    float64
		leaves    []string
		topLabels []string
	}{
		{"disk.tm3", "disk", 260, []string{"a.jpg", "b.jpg", "c.mp3", "notes"}, []string{"photos", "music", "notes"}},
		{"disk.xml", "disk", 210, []string{"a.jpg", "b.jpg", "notes"}, []string{"photos", "notes"}},
		{"disk.json", "disk", 210, []string{"a.jpg", "b.jpg", "notes"}, []string{"photos", "notes"}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			root, err := ReadFile(filepath.Join("testdata", tt.file), Options{})
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if got := label(root); got != tt.rootLabel {
				t.Errorf("root label = %q, want %q", got, tt.rootLabel)
			}
			if root.Weight() != tt.weight {
				t.Errorf("root weight = %v, want %v", root.Weight(), tt.weight)
			}
			if got := strings.Join(labels(root.Leaves()), ","); got != strings.Join(tt.leaves, ",") {
				t.Errorf("leaves = %s, want %v", got, tt.leaves)
			}
			if got := strings.Join(labels(root.Children()), ","); got != strings.Join(tt.topLabels, ",") {
				t.Errorf("top level = %s, want %v", got, tt.topLabels)
			}
		})
	}
}

func TestReadTM3_Fields(t *testing.T) {
	root, err := ReadFile(filepath.Join("testdata", "disk.tm3"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	a, err := Find(root, BeanProvider{}, "photos/2024/a.jpg")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	bean := a.Value().(*Bean)
	if got, _ := bean.Field("Size"); got != int64(120) {
		t.Errorf("Size = %v (%T), want int64 120", got, got)
	}
	modified, _ := bean.Field("Modified")
	if want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC); !modified.(time.Time).Equal(want) {
		t.Errorf("Modified = %v, want %v", modified, want)
	}
	if got := (BeanProvider{}).NumericValue(bean); got != 120 {
		t.Errorf("default NumericValue = %v, want the weight 120", got)
	}
	if got := (BeanProvider{ValueField: "Modified"}).NumericValue(bean); got != float64(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).UnixMilli()) {
		t.Errorf("date NumericValue = %v, want Unix millis", got)
	}
}

func TestReadTM3_WeightField(t *testing.T) {
	doc := "Name\tSize\tScore\nSTRING\tINTEGER\tFLOAT\na\t10\t0.5\tg\ta\nb\t30\t1.5\tg\tb\n"

	root, err := ReadBytes([]byte(doc), FormatTM3, Options{WeightField: "Score"})
	if err != nil {
		t.Fatal(err)
	}
	if root.Weight() != 2 {
		t.Errorf("weight by Score = %v, want 2", root.Weight())
	}

	_, err = ReadBytes([]byte(doc), FormatTM3, Options{WeightField: "Name"})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("non-numeric weight field error = %v, want INVALID_INPUT", err)
	}
	_, err = ReadBytes([]byte(doc), FormatTM3, Options{WeightField: "Missing"})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("missing weight field error = %v, want INVALID_INPUT", err)
	}
}

func TestReadTM3_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errs.Code
	}{
		{"empty", "", errs.ErrCodeParse},
		{"no types", "Name\tSize\n", errs.ErrCodeParse},
		{"type count", "Name\tSize\nSTRING\n", errs.ErrCodeParse},
		{"unknown type", "Name\tSize\nSTRING\tBLOB\n", errs.ErrCodeParse},
		{"short row", "Name\tSize\nSTRING\tINTEGER\nonly\n", errs.ErrCodeParse},
		{"bad integer", "Name\tSize\nSTRING\tINTEGER\na\tlots\tg\n", errs.ErrCodeParse},
		{"no numeric field", "Name\nSTRING\na\tg\n", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBytes([]byte(tt.doc), FormatTM3, Options{})
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadXML(t *testing.T) {
	root, err := ReadFile(filepath.Join("testdata", "disk.xml"), Options{WeightField: "value"})
	if err != nil {
		t.Fatal(err)
	}
	// notes has no <value>, so it weighs nothing
	if root.Weight() != 8 {
		t.Errorf("weight by value = %v, want 8", root.Weight())
	}

	bad := []string{
		"<root><label>x</label><folder/></root>",
		"<root><leaf><label>a</label><weight>heavy</weight></leaf></root>",
		"<root>",
	}
	for _, doc := range bad {
		if _, err := ReadBytes([]byte(doc), FormatXML, Options{}); !errs.Is(err, errs.ErrCodeParse) {
			t.Errorf("ReadXML(%q) error = %v, want PARSE_ERROR", doc, err)
		}
	}
}

func TestReadJSON(t *testing.T) {
	root, err := ReadFile(filepath.Join("testdata", "disk.json"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Find(root, BeanProvider{}, "/photos/b.jpg")
	if err != nil {
		t.Fatal(err)
	}
	bean := b.Value().(*Bean)
	if owner, _ := bean.Field("owner"); owner != "ana" {
		t.Errorf("owner = %v, want ana", owner)
	}
	if got := (BeanProvider{}).NumericValue(bean); got != 5 {
		t.Errorf("NumericValue = %v, want 5", got)
	}

	root, err = ReadBytes([]byte(`{"label":"r","children":[{"label":"a","value":4},{"label":"b","value":6}]}`),
		FormatJSON, Options{WeightField: "value"})
	if err != nil {
		t.Fatal(err)
	}
	if root.Weight() != 10 {
		t.Errorf("weight by value = %v, want 10", root.Weight())
	}

	if _, err := ReadBytes([]byte(`{"label":`), FormatJSON, Options{}); !errs.Is(err, errs.ErrCodeParse) {
		t.Errorf("truncated JSON error = %v, want PARSE_ERROR", err)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := ReadBytes(nil, "csv", Options{}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v, want INVALID_FORMAT", err)
	}
	if _, err := ReadFile("tree.yaml", Options{}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unknown extension error = %v, want INVALID_FORMAT", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"), Options{}); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFind(t *testing.T) {
	root, err := ReadFile(filepath.Join("testdata", "disk.tm3"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	p := BeanProvider{}

	tests := []struct {
		path string
		want string
		code errs.Code
	}{
		{"", "disk", ""},
		{"/", "disk", ""},
		{"photos", "photos", ""},
		{"photos/2024/b.jpg", "b.jpg", ""},
		{"photos/2025", "", errs.ErrCodeNotFound},
		{"photos//2024", "", errs.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, err := Find(root, p, tt.path)
			if tt.code != "" {
				if !errs.Is(err, tt.code) {
					t.Errorf("Find(%q) error = %v, want %s", tt.path, err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find(%q) error: %v", tt.path, err)
			}
			if label(n) != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.path, label(n), tt.want)
			}
			if tt.path != "" && tt.path != "/" && PathOf(n, p) != strings.Trim(tt.path, "/") {
				t.Errorf("PathOf() = %q, want %q", PathOf(n, p), tt.path)
			}
		})
	}
}

func TestBeanProvider(t *testing.T) {
	leaf := treemap.MustLeaf(&Bean{Label: "a", Fields: map[string]any{"value": 2.5}}, 1)
	p := BeanProvider{}
	if got := p.Tooltip(leaf); got != "a\n2.5" {
		t.Errorf("Tooltip() = %q", got)
	}
	if got := p.Label(treemap.MustLeaf("plain", 1)); got != "plain" {
		t.Errorf("Label(non-bean) = %q", got)
	}
	if got := p.NumericValue(&Bean{}); got != 0 {
		t.Errorf("NumericValue(empty) = %v, want 0", got)
	}
}
