package layout

import "github.com/roach88/spikeview/internal/canon"

// Prune returns a copy of the tree keeping only View leaves for which keep
// returns true. Containers left without items are removed, and the hints
// or labels of removed items are dropped with them. Prune returns nil when
// nothing is kept. The input tree is not modified.
func Prune(n Node, keep func(viewID string) bool) Node {
	return prune(n, keep, make(map[Node]bool))
}

func prune(n Node, keep func(string) bool, onPath map[Node]bool) Node {
	if isNilNode(n) || onPath[n] {
		return nil
	}
	onPath[n] = true
	defer delete(onPath, n)

	switch n := n.(type) {
	case *View:
		if !keep(n.ViewID) {
			return nil
		}
		return &View{ViewID: n.ViewID}

	case *Box:
		items, hints := pruneItems(n.Items, n.ItemProperties, keep, onPath)
		if len(items) == 0 {
			return nil
		}
		return &Box{
			Direction:      n.Direction,
			Items:          items,
			ItemProperties: hints,
			Scrollbar:      n.Scrollbar,
			ShowTitles:     n.ShowTitles,
		}

	case *Splitter:
		items, hints := pruneItems(n.Items, n.ItemProperties, keep, onPath)
		if len(items) == 0 {
			return nil
		}
		return &Splitter{
			Direction:      n.Direction,
			Items:          items,
			ItemProperties: hints,
			ShowTitles:     n.ShowTitles,
		}

	case *TabLayout:
		tab := &TabLayout{}
		for i, child := range n.Items {
			kept := prune(child, keep, onPath)
			if kept == nil {
				continue
			}
			tab.Items = append(tab.Items, kept)
			if i < len(n.Labels) {
				tab.Labels = append(tab.Labels, n.Labels[i])
			}
		}
		if len(tab.Items) == 0 {
			return nil
		}
		return tab
	}
	return nil
}

// pruneItems keeps hints aligned with surviving items. Hints are only
// carried over when they matched the items one to one.
func pruneItems(items []Node, hints []canon.Object, keep func(string) bool, onPath map[Node]bool) ([]Node, []canon.Object) {
	aligned := hints != nil && len(hints) == len(items)
	var keptItems []Node
	var keptHints []canon.Object
	if aligned {
		keptHints = []canon.Object{}
	}
	for i, child := range items {
		kept := prune(child, keep, onPath)
		if kept == nil {
			continue
		}
		keptItems = append(keptItems, kept)
		if aligned {
			keptHints = append(keptHints, hints[i])
		}
	}
	return keptItems, keptHints
}
