package source

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// TM3 field types.
const (
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeFloat   = "FLOAT"
	TypeDate    = "DATE"
)

// tm3DateLayouts are tried in order when parsing DATE cells.
var tm3DateLayouts = []string{"01/02/2006", "2006-01-02", time.RFC3339}

type tm3Field struct {
	name string
	typ  string
}

func (f tm3Field) numeric() bool {
	return f.typ == TypeInteger || f.typ == TypeFloat || f.typ == TypeDate
}

// ReadTM3 parses a tab-separated TM3 document.
//
// Branches are created on demand, in the order their path prefix is first
// seen. The root has an empty label; ReadFile names it after the file. Each
// leaf also exposes its weight as a "weight" field unless the document
// declares one itself.
func ReadTM3(r io.Reader, opts Options) (*treemap.Node, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	names, err := cr.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "tm3: read field names")
	}
	types, err := cr.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "tm3: read field types")
	}
	fields, err := tm3Header(names, types)
	if err != nil {
		return nil, err
	}

	weightField, err := tm3WeightField(fields, opts.WeightField)
	if err != nil {
		return nil, err
	}
	root := treemap.NewBranch(NewBean(""))
	branches := make(map[string]*treemap.Node)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeParse, err, "tm3: read row")
		}
		line, _ := cr.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < len(fields) {
			return nil, errs.New(errs.ErrCodeParse,
				"tm3: line %d has %d cells, want at least %d", line, len(record), len(fields))
		}

		bean := &Bean{Fields: make(map[string]any, len(fields))}
		for i, f := range fields {
			v, err := tm3Cell(f, record[i])
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeParse, err, "tm3: line %d field %s", line, f.name)
			}
			if v != nil {
				bean.Fields[f.name] = v
			}
		}

		path := trimEmpty(record[len(fields):])
		parent := root
		if len(path) == 0 {
			bean.Label = tm3FallbackLabel(fields, bean, line)
		} else {
			for depth := 0; depth < len(path)-1; depth++ {
				key := strings.Join(path[:depth+1], "\x00")
				b, ok := branches[key]
				if !ok {
					b = treemap.NewBranch(NewBean(path[depth]))
					if err := parent.Add(b); err != nil {
						return nil, err
					}
					branches[key] = b
				}
				parent = b
			}
			bean.Label = path[len(path)-1]
		}

		var weight float64
		if v, ok := bean.Field(weightField); ok {
			weight, _ = Number(v)
		}
		if _, ok := bean.Field(FieldWeight); !ok {
			bean.Set(FieldWeight, weight)
		}
		if err := addLeaf(parent, bean, weight); err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, "tm3: line %d", line)
		}
	}
	return root, nil
}

func tm3Header(names, types []string) ([]tm3Field, error) {
	names = trimEmpty(names)
	types = trimEmpty(types)
	if len(names) == 0 {
		return nil, errs.New(errs.ErrCodeParse, "tm3: no fields declared")
	}
	if len(types) != len(names) {
		return nil, errs.New(errs.ErrCodeParse,
			"tm3: %d field names but %d types", len(names), len(types))
	}
	fields := make([]tm3Field, len(names))
	for i := range names {
		typ := strings.ToUpper(strings.TrimSpace(types[i]))
		switch typ {
		case TypeString, TypeInteger, TypeFloat, TypeDate:
		default:
			return nil, errs.New(errs.ErrCodeParse, "tm3: field %s has unknown type %q", names[i], types[i])
		}
		fields[i] = tm3Field{name: strings.TrimSpace(names[i]), typ: typ}
	}
	return fields, nil
}

// tm3WeightField returns the requested field, or the first numeric one.
func tm3WeightField(fields []tm3Field, want string) (string, error) {
	for _, f := range fields {
		if want == "" && f.numeric() {
			return f.name, nil
		}
		if f.name == want {
			if !f.numeric() {
				return "", errs.New(errs.ErrCodeInvalidInput, "tm3: weight field %s is %s, not numeric", f.name, f.typ)
			}
			return f.name, nil
		}
	}
	if want == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "tm3: no numeric field to use as weight")
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "tm3: weight field %s is not declared", want)
}

// tm3Cell converts a cell to its declared type. Empty cells yield nil.
func tm3Cell(f tm3Field, cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	switch f.typ {
	case TypeInteger:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case TypeFloat:
		return strconv.ParseFloat(cell, 64)
	case TypeDate:
		for _, layout := range tm3DateLayouts {
			if t, err := time.Parse(layout, cell); err == nil {
				return t, nil
			}
		}
		return nil, errs.New(errs.ErrCodeParse, "unrecognized date %q", cell)
	default:
		return cell, nil
	}
}

func tm3FallbackLabel(fields []tm3Field, bean *Bean, line int) string {
	for _, f := range fields {
		if f.typ == TypeString {
			if s, ok := bean.Fields[f.name].(string); ok {
				return s
			}
		}
	}
	return "row " + strconv.Itoa(line)
}

// trimEmpty drops trailing blank cells.
func trimEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
