package layout

import (
	"errors"
	"fmt"

	"github.com/roach88/spikeview/internal/canon"
)

// Kind is the top-level document type.
type Kind string

const (
	KindSortingLayout Kind = "SortingLayout"
	KindComposite     Kind = "Composite"
)

// compositeLayout is the only layout value a Composite document carries.
const compositeLayout = "default"

// ViewEntry is one row of a document's views table.
type ViewEntry struct {
	ViewID  string
	Type    string
	DataURI canon.Address

	// Composite documents only.
	Label         string
	DefaultHeight int
}

// Document is a publishable layout plus the views it references.
// Layout is set for KindSortingLayout and nil for KindComposite.
type Document struct {
	Kind   Kind
	Layout Node
	Views  []ViewEntry
}

// View returns the entry for viewID.
func (d *Document) View(viewID string) (ViewEntry, bool) {
	for _, v := range d.Views {
		if v.ViewID == viewID {
			return v, true
		}
	}
	return ViewEntry{}, false
}

var errCycle = errors.New("layout contains a cycle")

// Value converts the document to its canonical representation.
func (d *Document) Value() (canon.Value, error) {
	switch d.Kind {
	case KindSortingLayout:
		if d.Layout == nil {
			return nil, fmt.Errorf("%s document has no layout", d.Kind)
		}
		layout, err := nodeValue(d.Layout, make(map[Node]bool))
		if err != nil {
			return nil, err
		}
		views := make(canon.Array, len(d.Views))
		for i, v := range d.Views {
			views[i] = canon.NewObject(
				canon.P("viewId", canon.String(v.ViewID)),
				canon.P("type", canon.String(v.Type)),
				canon.P("dataUri", canon.String(v.DataURI)),
			)
		}
		return canon.NewObject(
			canon.P("type", canon.String(d.Kind)),
			canon.P("layout", layout),
			canon.P("views", views),
		), nil

	case KindComposite:
		views := make(canon.Array, len(d.Views))
		for i, v := range d.Views {
			obj := canon.NewObject(
				canon.P("label", canon.String(v.Label)),
				canon.P("type", canon.String(v.Type)),
				canon.P("dataUri", canon.String(v.DataURI)),
			)
			if v.DefaultHeight > 0 {
				obj["defaultHeight"] = canon.Int(v.DefaultHeight)
			}
			views[i] = obj
		}
		return canon.NewObject(
			canon.P("type", canon.String(d.Kind)),
			canon.P("layout", canon.String(compositeLayout)),
			canon.P("views", views),
		), nil
	}
	return nil, fmt.Errorf("unknown document type %q", d.Kind)
}

// MarshalCanonical returns the canonical JSON encoding of the document.
func (d *Document) MarshalCanonical() ([]byte, error) {
	v, err := d.Value()
	if err != nil {
		return nil, err
	}
	return canon.Marshal(v)
}

// NodeValue converts a layout tree to its canonical representation.
func NodeValue(n Node) (canon.Value, error) {
	return nodeValue(n, make(map[Node]bool))
}

func nodeValue(n Node, onPath map[Node]bool) (canon.Value, error) {
	if isNilNode(n) {
		return nil, errors.New("nil layout node")
	}
	if onPath[n] {
		return nil, errCycle
	}
	onPath[n] = true
	defer delete(onPath, n)

	switch n := n.(type) {
	case *View:
		return canon.NewObject(
			canon.P("type", canon.String(TypeView)),
			canon.P("viewId", canon.String(n.ViewID)),
		), nil

	case *Box:
		obj, err := containerValue(TypeBox, n.Direction, n.Items, n.ItemProperties, n.ShowTitles, onPath)
		if err != nil {
			return nil, err
		}
		if n.Scrollbar {
			obj["scrollbar"] = canon.Bool(true)
		}
		return obj, nil

	case *Splitter:
		return containerValue(TypeSplitter, n.Direction, n.Items, n.ItemProperties, n.ShowTitles, onPath)

	case *TabLayout:
		children, err := childValues(n.Items, onPath)
		if err != nil {
			return nil, err
		}
		props := make(canon.Array, len(n.Labels))
		for i, label := range n.Labels {
			props[i] = canon.NewObject(canon.P("label", canon.String(label)))
		}
		return canon.NewObject(
			canon.P("type", canon.String(TypeTabLayout)),
			canon.P("items", children),
			canon.P("itemProperties", props),
		), nil
	}
	return nil, fmt.Errorf("unknown layout node %T", n)
}

func containerValue(typ string, dir Direction, items []Node, hints []canon.Object, showTitles bool, onPath map[Node]bool) (canon.Object, error) {
	children, err := childValues(items, onPath)
	if err != nil {
		return nil, err
	}
	obj := canon.NewObject(
		canon.P("type", canon.String(typ)),
		canon.P("direction", canon.String(dir)),
		canon.P("items", children),
	)
	if hints != nil {
		props := make(canon.Array, len(hints))
		for i, h := range hints {
			props[i] = h
		}
		obj["itemProperties"] = props
	}
	if showTitles {
		obj["showTitles"] = canon.Bool(true)
	}
	return obj, nil
}

func childValues(items []Node, onPath map[Node]bool) (canon.Array, error) {
	out := make(canon.Array, len(items))
	for i, child := range items {
		v, err := nodeValue(child, onPath)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Box:
		return n == nil
	case *Splitter:
		return n == nil
	case *TabLayout:
		return n == nil
	case *View:
		return n == nil
	}
	return false
}
