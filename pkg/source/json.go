package source

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// jsonNode is one object in a JSON tree document.
type jsonNode struct {
	Label    string         `json:"label"`
	Weight   *float64       `json:"weight,omitempty"`
	Value    any            `json:"value,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Children []jsonNode     `json:"children,omitempty"`
}

// ReadJSON parses a nested JSON tree:
//
//	{
//	  "label": "disk",
//	  "children": [
//	    {"label": "a.jpg", "weight": 120, "value": 3},
//	    {"label": "b.jpg", "weight": 80, "fields": {"owner": "ana"}}
//	  ]
//	}
//
// Objects with children are branches and their weight is ignored. Leaf
// weights come from "weight", or from the field named by
// Options.WeightField, looked up in "fields" and then "value".
func ReadJSON(r io.Reader, opts Options) (*treemap.Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc jsonNode
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "json: decode")
	}

	root := treemap.NewBranch(NewBean(doc.Label))
	if len(doc.Children) == 0 {
		// a lone object is a single leaf under an anonymous root
		if err := jsonAdd(root, doc, opts.WeightField); err != nil {
			return nil, err
		}
		root.SetValue(NewBean(""))
		return root, nil
	}
	for _, c := range doc.Children {
		if err := jsonAdd(root, c, opts.WeightField); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func jsonAdd(parent *treemap.Node, n jsonNode, weightField string) error {
	bean := NewBean(n.Label)
	for k, v := range n.Fields {
		bean.Set(k, v)
	}
	if n.Value != nil {
		bean.Set(FieldValue, n.Value)
	}

	if len(n.Children) > 0 {
		b := treemap.NewBranch(bean)
		if err := parent.Add(b); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := jsonAdd(b, c, weightField); err != nil {
				return err
			}
		}
		return nil
	}

	var weight float64
	if n.Weight != nil {
		weight = *n.Weight
		bean.Set(FieldWeight, weight)
	}
	if weightField != "" && weightField != FieldWeight {
		v, ok := bean.Field(weightField)
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "json: leaf %q has no field %s", n.Label, weightField)
		}
		w, ok := Number(v)
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "json: leaf %q field %s is not numeric", n.Label, weightField)
		}
		weight = w
	}
	return addLeaf(parent, bean, weight)
}
