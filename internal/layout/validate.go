package layout

import (
	"fmt"
	"strings"

	"github.com/roach88/spikeview/internal/canon"
)

// Validation error codes (E200-E299)
const (
	ErrUnresolvedViewID    = "E201" // layout references a view missing from the views table
	ErrMismatchedHintCount = "E202" // itemProperties/labels length differs from items
	ErrCyclicReference     = "E203" // a node is its own ancestor
	ErrMalformedHints      = "E204" // hint object has a missing or invalid value
	ErrDuplicateViewID     = "E205" // viewId appears more than once in the views table
	ErrInvalidDirection    = "E206" // direction is not horizontal or vertical
	ErrEmptyViewID         = "E207" // empty viewId or label
	ErrUnknownNode         = "E208" // unknown or missing node
	ErrSchemaViolation     = "E209" // document does not satisfy the published schema
	ErrInvalidAddress      = "E210" // dataUri is not a content address
)

// ValidationError describes one problem in a document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in a document.
type ValidationErrors struct {
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid layout (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Has reports whether any error carries code.
func (e *ValidationErrors) Has(code string) bool {
	for _, ve := range e.Errors {
		if ve.Code == code {
			return true
		}
	}
	return false
}

// asError returns nil for an empty list.
func asError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationErrors{Errors: errs}
}

// Validate checks a document before publishing.
// Returns all errors found (does not fail-fast).
//
// Views that are defined but not referenced by the layout are allowed.
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError

	known := make(map[string]bool, len(doc.Views))
	for i, v := range doc.Views {
		field := fmt.Sprintf("views[%d]", i)
		key := v.ViewID
		if doc.Kind == KindComposite {
			key = v.Label
		}

		// E207: identity required
		if key == "" {
			name := "viewId"
			if doc.Kind == KindComposite {
				name = "label"
			}
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: name + " is required",
				Code:    ErrEmptyViewID,
			})
		} else if known[key] {
			// E205: duplicate view id
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate view %q", key),
				Code:    ErrDuplicateViewID,
			})
		}
		known[key] = true

		// E210: dataUri must be a content address
		if _, err := canon.ParseAddress(string(v.DataURI)); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".dataUri",
				Message: err.Error(),
				Code:    ErrInvalidAddress,
			})
		}
	}

	switch doc.Kind {
	case KindSortingLayout:
		if doc.Layout == nil {
			errs = append(errs, ValidationError{
				Field:   "layout",
				Message: "layout is required",
				Code:    ErrUnknownNode,
			})
			break
		}
		v := &treeValidator{views: known, onPath: make(map[Node]bool)}
		v.node(doc.Layout, "layout")
		errs = append(errs, v.errs...)

	case KindComposite:
		if doc.Layout != nil {
			errs = append(errs, ValidationError{
				Field:   "layout",
				Message: "composite documents use the default layout",
				Code:    ErrUnknownNode,
			})
		}
		for i, v := range doc.Views {
			if v.DefaultHeight < 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("views[%d].defaultHeight", i),
					Message: "defaultHeight must not be negative",
					Code:    ErrMalformedHints,
				})
			}
		}

	default:
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("unknown document type %q", doc.Kind),
			Code:    ErrUnknownNode,
		})
	}

	return errs
}

// ValidateTree checks a layout tree against a set of known view ids.
func ValidateTree(root Node, viewIDs []string) []ValidationError {
	known := make(map[string]bool, len(viewIDs))
	for _, id := range viewIDs {
		known[id] = true
	}
	v := &treeValidator{views: known, onPath: make(map[Node]bool)}
	v.node(root, "layout")
	return v.errs
}

type treeValidator struct {
	views  map[string]bool
	onPath map[Node]bool
	errs   []ValidationError
}

func (v *treeValidator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *treeValidator) node(n Node, field string) {
	if isNilNode(n) {
		v.add(field, ErrUnknownNode, "missing layout node")
		return
	}

	// E203: a container reachable from itself
	if v.onPath[n] {
		v.add(field, ErrCyclicReference, "%s node is its own ancestor", n.NodeType())
		return
	}
	v.onPath[n] = true
	defer delete(v.onPath, n)

	switch n := n.(type) {
	case *View:
		if n.ViewID == "" {
			v.add(field+".viewId", ErrEmptyViewID, "viewId is required")
		} else if !v.views[n.ViewID] {
			v.add(field+".viewId", ErrUnresolvedViewID, "view %q is not in the views table", n.ViewID)
		}

	case *Box:
		v.direction(n.Direction, field)
		v.hints(n.ItemProperties, len(n.Items), field)
		v.children(n.Items, field)

	case *Splitter:
		v.direction(n.Direction, field)
		v.hints(n.ItemProperties, len(n.Items), field)
		v.children(n.Items, field)

	case *TabLayout:
		if len(n.Labels) != len(n.Items) {
			v.add(field+".labels", ErrMismatchedHintCount,
				"%d labels for %d items", len(n.Labels), len(n.Items))
		}
		v.children(n.Items, field)

	default:
		v.add(field, ErrUnknownNode, "unknown node type %T", n)
	}
}

func (v *treeValidator) direction(d Direction, field string) {
	if !d.Valid() {
		v.add(field+".direction", ErrInvalidDirection,
			"direction must be %q or %q, got %q", Horizontal, Vertical, d)
	}
}

// hints checks count and shape; nil means no hints were supplied.
func (v *treeValidator) hints(hints []canon.Object, numItems int, field string) {
	if hints == nil {
		return
	}
	if len(hints) != numItems {
		v.add(field+".itemProperties", ErrMismatchedHintCount,
			"%d itemProperties for %d items", len(hints), numItems)
	}
	for i, h := range hints {
		hf := fmt.Sprintf("%s.itemProperties[%d]", field, i)
		if h == nil {
			v.add(hf, ErrMalformedHints, "hint must be an object")
			continue
		}
		for _, key := range h.SortedKeys() {
			if h[key] == nil {
				v.add(hf+"."+key, ErrMalformedHints, "hint value is missing")
			}
		}
	}
}

func (v *treeValidator) children(items []Node, field string) {
	for i, child := range items {
		v.node(child, fmt.Sprintf("%s.items[%d]", field, i))
	}
}
