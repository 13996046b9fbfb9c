package layout

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/spikeview/internal/canon"
)

// ParseDocument reads a document from JSON or YAML (JSON is parsed as YAML).
func ParseDocument(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	v, err := canon.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return DecodeDocument(v)
}

// DecodeDocument converts a generic value into a Document. Shape errors are
// returned together as *ValidationErrors; semantic checks are left to Validate.
func DecodeDocument(v canon.Value) (*Document, error) {
	d := &decoder{}
	obj, ok := d.object(v, "document")
	if !ok {
		return nil, asError(d.errs)
	}

	doc := &Document{Kind: Kind(d.str(obj, "type", "type"))}
	switch doc.Kind {
	case KindSortingLayout:
		if lv, ok := obj["layout"]; ok {
			doc.Layout = d.node(lv, "layout")
		} else {
			d.add("layout", ErrUnknownNode, "layout is required")
		}
		doc.Views = d.views(obj["views"], false)
	case KindComposite:
		if s, ok := obj["layout"].(canon.String); !ok || s != compositeLayout {
			d.add("layout", ErrUnknownNode, "composite layout must be %q", compositeLayout)
		}
		doc.Views = d.views(obj["views"], true)
	default:
		d.add("type", ErrUnknownNode, "unknown document type %q", doc.Kind)
	}

	if err := asError(d.errs); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeNode converts a generic value (as produced by canon.Decode or
// canon.FromGo on YAML input) into a layout tree.
func DecodeNode(v canon.Value) (Node, error) {
	d := &decoder{}
	n := d.node(v, "layout")
	if err := asError(d.errs); err != nil {
		return nil, err
	}
	return n, nil
}

type decoder struct {
	errs []ValidationError
}

func (d *decoder) add(field, code, format string, args ...any) {
	d.errs = append(d.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (d *decoder) object(v canon.Value, field string) (canon.Object, bool) {
	obj, ok := v.(canon.Object)
	if !ok {
		d.add(field, ErrUnknownNode, "expected an object, got %s", describe(v))
	}
	return obj, ok
}

func (d *decoder) str(obj canon.Object, key, field string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, ok := v.(canon.String)
	if !ok {
		d.add(field, ErrSchemaViolation, "expected a string, got %s", describe(v))
		return ""
	}
	return string(s)
}

func (d *decoder) boolean(obj canon.Object, key, field string) bool {
	v, ok := obj[key]
	if !ok {
		return false
	}
	b, ok := v.(canon.Bool)
	if !ok {
		d.add(field, ErrSchemaViolation, "expected a boolean, got %s", describe(v))
		return false
	}
	return bool(b)
}

func (d *decoder) array(obj canon.Object, key, field string) (canon.Array, bool) {
	v, ok := obj[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.(canon.Array)
	if !ok {
		d.add(field, ErrSchemaViolation, "expected a list, got %s", describe(v))
	}
	return arr, ok
}

func (d *decoder) node(v canon.Value, field string) Node {
	obj, ok := d.object(v, field)
	if !ok {
		return nil
	}

	typ := d.str(obj, "type", field+".type")
	switch typ {
	case TypeView:
		return &View{ViewID: d.str(obj, "viewId", field+".viewId")}

	case TypeBox:
		return &Box{
			Direction:      Direction(d.str(obj, "direction", field+".direction")),
			Items:          d.items(obj, field),
			ItemProperties: d.hints(obj, field),
			Scrollbar:      d.boolean(obj, "scrollbar", field+".scrollbar"),
			ShowTitles:     d.boolean(obj, "showTitles", field+".showTitles"),
		}

	case TypeSplitter:
		return &Splitter{
			Direction:      Direction(d.str(obj, "direction", field+".direction")),
			Items:          d.items(obj, field),
			ItemProperties: d.hints(obj, field),
			ShowTitles:     d.boolean(obj, "showTitles", field+".showTitles"),
		}

	case TypeTabLayout:
		tab := &TabLayout{Items: d.items(obj, field)}
		props, _ := d.array(obj, "itemProperties", field+".itemProperties")
		for i, p := range props {
			pf := fmt.Sprintf("%s.itemProperties[%d]", field, i)
			po, ok := p.(canon.Object)
			if !ok {
				d.add(pf, ErrMalformedHints, "expected an object, got %s", describe(p))
				continue
			}
			tab.Labels = append(tab.Labels, d.str(po, "label", pf+".label"))
		}
		return tab

	case "":
		d.add(field+".type", ErrUnknownNode, "node type is required")
	default:
		d.add(field+".type", ErrUnknownNode, "unknown node type %q", typ)
	}
	return nil
}

func (d *decoder) items(obj canon.Object, field string) []Node {
	arr, _ := d.array(obj, "items", field+".items")
	nodes := make([]Node, 0, len(arr))
	for i, item := range arr {
		if n := d.node(item, fmt.Sprintf("%s.items[%d]", field, i)); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// hints keeps a missing itemProperties key as nil so Validate can tell
// "no hints" from "zero hints".
func (d *decoder) hints(obj canon.Object, field string) []canon.Object {
	arr, ok := d.array(obj, "itemProperties", field+".itemProperties")
	if !ok {
		return nil
	}
	hints := make([]canon.Object, 0, len(arr))
	for i, h := range arr {
		ho, ok := h.(canon.Object)
		if !ok {
			d.add(fmt.Sprintf("%s.itemProperties[%d]", field, i), ErrMalformedHints,
				"hint must be an object, got %s", describe(h))
			continue
		}
		hints = append(hints, ho)
	}
	return hints
}

func (d *decoder) views(v canon.Value, composite bool) []ViewEntry {
	if v == nil {
		return nil
	}
	arr, ok := v.(canon.Array)
	if !ok {
		d.add("views", ErrSchemaViolation, "expected a list, got %s", describe(v))
		return nil
	}
	entries := make([]ViewEntry, 0, len(arr))
	for i, item := range arr {
		field := fmt.Sprintf("views[%d]", i)
		obj, ok := d.object(item, field)
		if !ok {
			continue
		}
		entry := ViewEntry{
			Type:    d.str(obj, "type", field+".type"),
			DataURI: canon.Address(d.str(obj, "dataUri", field+".dataUri")),
		}
		if composite {
			entry.Label = d.str(obj, "label", field+".label")
			if h, ok := obj["defaultHeight"]; ok {
				n, isInt := h.(canon.Int)
				if !isInt {
					d.add(field+".defaultHeight", ErrSchemaViolation, "expected an integer, got %s", describe(h))
				}
				entry.DefaultHeight = int(n)
			}
		} else {
			entry.ViewID = d.str(obj, "viewId", field+".viewId")
		}
		entries = append(entries, entry)
	}
	return entries
}

func describe(v canon.Value) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case canon.Null:
		return "null"
	case canon.Bool:
		return "boolean"
	case canon.Int, canon.Float:
		return "number"
	case canon.String:
		return "string"
	case canon.Array:
		return "list"
	case canon.Object:
		return "object"
	case canon.NDArray:
		return "ndarray"
	}
	return fmt.Sprintf("%T", v)
}
