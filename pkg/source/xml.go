package source

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

type xmlNode struct {
	XMLName  xml.Name
	Label    string    `xml:"label"`
	Weight   string    `xml:"weight"`
	Value    string    `xml:"value"`
	Children []xmlNode `xml:",any"`
}

// ReadXML parses a document of nested <branch> and <leaf> elements:
//
//	<root>
//	  <label>disk</label>
//	  <branch>
//	    <label>photos</label>
//	    <leaf><label>a.jpg</label><weight>120</weight><value>3</value></leaf>
//	  </branch>
//	</root>
//
// The root element's name is not checked. A leaf's weight comes from
// <weight>, or from <value> when Options.WeightField is "value".
func ReadXML(r io.Reader, opts Options) (*treemap.Node, error) {
	var doc xmlNode
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "xml: decode")
	}

	weightField := opts.WeightField
	if weightField == "" {
		weightField = FieldWeight
	}
	if weightField != FieldWeight && weightField != FieldValue {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"xml: weight field must be %q or %q, got %q", FieldWeight, FieldValue, weightField)
	}

	root := treemap.NewBranch(NewBean(strings.TrimSpace(doc.Label)))
	if err := xmlChildren(root, doc.Children, weightField); err != nil {
		return nil, err
	}
	return root, nil
}

func xmlChildren(parent *treemap.Node, children []xmlNode, weightField string) error {
	for _, c := range children {
		label := strings.TrimSpace(c.Label)
		switch c.XMLName.Local {
		case "branch":
			b := treemap.NewBranch(NewBean(label))
			if err := parent.Add(b); err != nil {
				return err
			}
			if err := xmlChildren(b, c.Children, weightField); err != nil {
				return err
			}
		case "leaf":
			bean := NewBean(label)
			for _, kv := range []struct{ name, text string }{
				{FieldWeight, c.Weight},
				{FieldValue, c.Value},
			} {
				if strings.TrimSpace(kv.text) == "" {
					continue
				}
				f, err := strconv.ParseFloat(strings.TrimSpace(kv.text), 64)
				if err != nil {
					return errs.Wrap(errs.ErrCodeParse, err, "xml: leaf %q %s", label, kv.name)
				}
				bean.Set(kv.name, f)
			}
			var weight float64
			if v, ok := bean.Field(weightField); ok {
				weight = v.(float64)
			}
			if err := addLeaf(parent, bean, weight); err != nil {
				return err
			}
		default:
			return errs.New(errs.ErrCodeParse, "xml: unexpected element <%s>", c.XMLName.Local)
		}
	}
	return nil
}
