package layout

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/spikeview/internal/canon"
)

// Record is a typed view payload that can be stored.
type Record interface {
	Type() string
	Value() (canon.Value, error)
}

// Putter stores a value and returns its content address.
type Putter interface {
	Put(ctx context.Context, v canon.Value) (canon.Address, error)
}

// Builder accumulates stored views and assembles a Document from them.
// AddView is safe for concurrent use.
type Builder struct {
	store Putter

	mu    sync.Mutex
	views map[string]ViewEntry
}

// NewBuilder returns a Builder that stores view records in store.
func NewBuilder(store Putter) *Builder {
	return &Builder{store: store, views: make(map[string]ViewEntry)}
}

// AddView stores rec and records it under id.
func (b *Builder) AddView(ctx context.Context, id string, rec Record) (ViewEntry, error) {
	if id == "" {
		return ViewEntry{}, ValidationError{Field: "viewId", Message: "viewId is required", Code: ErrEmptyViewID}
	}
	b.mu.Lock()
	_, dup := b.views[id]
	b.mu.Unlock()
	if dup {
		return ViewEntry{}, ValidationError{Field: "viewId", Message: fmt.Sprintf("duplicate view %q", id), Code: ErrDuplicateViewID}
	}

	v, err := rec.Value()
	if err != nil {
		return ViewEntry{}, fmt.Errorf("view %q: %w", id, err)
	}
	addr, err := b.store.Put(ctx, v)
	if err != nil {
		return ViewEntry{}, fmt.Errorf("view %q: %w", id, err)
	}
	return b.Add(ViewEntry{ViewID: id, Type: rec.Type(), DataURI: addr})
}

// Add records an already stored view.
func (b *Builder) Add(entry ViewEntry) (ViewEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.views[entry.ViewID]; dup {
		return ViewEntry{}, ValidationError{Field: "viewId", Message: fmt.Sprintf("duplicate view %q", entry.ViewID), Code: ErrDuplicateViewID}
	}
	b.views[entry.ViewID] = entry
	return entry, nil
}

// Has reports whether a view with id has been added.
func (b *Builder) Has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.views[id]
	return ok
}

// IDs returns the ids of added views in sorted order.
func (b *Builder) IDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.idsLocked()
}

// Build validates root against the added views and returns a SortingLayout
// document. Views are listed in order of first reference in the layout,
// followed by unreferenced views sorted by id.
func (b *Builder) Build(root Node) (*Document, error) {
	doc := &Document{Kind: KindSortingLayout, Layout: root}

	b.mu.Lock()
	placed := make(map[string]bool)
	if errs := ValidateTree(root, b.idsLocked()); len(errs) == 0 {
		for _, id := range ViewIDs(root) {
			doc.Views = append(doc.Views, b.views[id])
			placed[id] = true
		}
	}
	for _, id := range b.idsLocked() {
		if !placed[id] {
			doc.Views = append(doc.Views, b.views[id])
		}
	}
	b.mu.Unlock()

	if err := asError(Validate(doc)); err != nil {
		return nil, err
	}
	return doc, nil
}

// BuildComposite returns a Composite document listing the views in the
// given order, or all views sorted by id when order is empty. Each view's
// label is its id.
func (b *Builder) BuildComposite(defaultHeight int, order ...string) (*Document, error) {
	if len(order) == 0 {
		order = b.IDs()
	}

	doc := &Document{Kind: KindComposite}
	var errs []ValidationError

	b.mu.Lock()
	for i, id := range order {
		entry, ok := b.views[id]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("views[%d]", i),
				Message: fmt.Sprintf("view %q has not been added", id),
				Code:    ErrUnresolvedViewID,
			})
			continue
		}
		entry.Label = id
		entry.DefaultHeight = defaultHeight
		doc.Views = append(doc.Views, entry)
	}
	b.mu.Unlock()

	errs = append(errs, Validate(doc)...)
	if err := asError(errs); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *Builder) idsLocked() []string {
	ids := make([]string, 0, len(b.views))
	for id := range b.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
