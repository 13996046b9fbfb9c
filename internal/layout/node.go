package layout

import (
	"fmt"

	"github.com/roach88/spikeview/internal/canon"
)

// Direction is the main axis of a Box or Splitter.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical
}

// Node type tags as they appear in serialized layouts.
const (
	TypeBox       = "Box"
	TypeSplitter  = "Splitter"
	TypeTabLayout = "TabLayout"
	TypeView      = "View"
)

// Node is one element of a layout tree: *Box, *Splitter, *TabLayout or *View.
type Node interface {
	NodeType() string
	layoutNode()
}

// Box arranges its items along one axis.
type Box struct {
	Direction Direction
	Items     []Node
	// ItemProperties holds one hint object per item, or nil for none.
	ItemProperties []canon.Object
	Scrollbar      bool
	ShowTitles     bool
}

// Splitter is a Box whose dividers can be dragged.
type Splitter struct {
	Direction      Direction
	Items          []Node
	ItemProperties []canon.Object
	ShowTitles     bool
}

// TabLayout shows one item at a time under a labelled tab.
type TabLayout struct {
	Items  []Node
	Labels []string
}

// View references a published view by id.
type View struct {
	ViewID string
}

func (*Box) NodeType() string       { return TypeBox }
func (*Splitter) NodeType() string  { return TypeSplitter }
func (*TabLayout) NodeType() string { return TypeTabLayout }
func (*View) NodeType() string      { return TypeView }

func (*Box) layoutNode()       {}
func (*Splitter) layoutNode()  {}
func (*TabLayout) layoutNode() {}
func (*View) layoutNode()      {}

// ViewRef returns a leaf referencing viewID.
func ViewRef(viewID string) *View {
	return &View{ViewID: viewID}
}

// HBox returns a horizontal Box without hints.
func HBox(items ...Node) *Box {
	return &Box{Direction: Horizontal, Items: items}
}

// VBox returns a vertical Box without hints.
func VBox(items ...Node) *Box {
	return &Box{Direction: Vertical, Items: items}
}

// Hint builds a sizing hint object, e.g. Hint("minSize", 100, "stretch", 1).
// Values may be ints, floats, strings or bools.
//
// Hint is meant for literal layouts and panics on an odd argument count, a
// non-string key or a value canon cannot represent.
func Hint(kv ...any) canon.Object {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("layout.Hint: odd argument count %d", len(kv)))
	}
	obj := canon.Object{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("layout.Hint: key %d is %T, not string", i/2, kv[i]))
		}
		v, err := canon.FromGo(kv[i+1])
		if err != nil {
			panic(fmt.Sprintf("layout.Hint: value for %q: %v", key, err))
		}
		obj[key] = v
	}
	return obj
}

// items returns the children of a container node, or nil for a View.
func items(n Node) []Node {
	switch n := n.(type) {
	case *Box:
		return n.Items
	case *Splitter:
		return n.Items
	case *TabLayout:
		return n.Items
	}
	return nil
}

// Walk calls fn for every node in the tree rooted at n, parents before
// children. It does not guard against cycles; call Validate first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range items(n) {
		Walk(child, fn)
	}
}

// ViewIDs returns the view ids referenced under n in first-appearance order,
// without duplicates.
func ViewIDs(n Node) []string {
	seen := make(map[string]bool)
	var ids []string
	Walk(n, func(n Node) {
		if v, ok := n.(*View); ok && !seen[v.ViewID] {
			seen[v.ViewID] = true
			ids = append(ids, v.ViewID)
		}
	})
	return ids
}
