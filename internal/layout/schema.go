package layout

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

// Schema checks serialized documents against the embedded CUE definitions.
// A cue.Context is not safe for concurrent use, so checks are serialized.
type Schema struct {
	mu       sync.Mutex
	ctx      *cue.Context
	document cue.Value
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile layout schema: %w", err)
	}
	doc := v.LookupPath(cue.ParsePath("#Document"))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Document: %w", err)
	}
	return &Schema{ctx: ctx, document: doc}, nil
}

// CheckSchema validates JSON document bytes against the embedded schema.
func CheckSchema(docJSON []byte) []ValidationError {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = NewSchema()
	})
	if defaultSchemaErr != nil {
		return []ValidationError{{Field: "schema", Message: defaultSchemaErr.Error(), Code: ErrSchemaViolation}}
	}
	return defaultSchema.Check(docJSON)
}

// Check validates JSON document bytes. Returns all errors found.
func (s *Schema) Check(docJSON []byte) []ValidationError {
	expr, err := cuejson.Extract("document.json", docJSON)
	if err != nil {
		return []ValidationError{{Field: "document", Message: err.Error(), Code: ErrSchemaViolation}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return cueValidationErrors(err)
	}
	if err := s.document.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return cueValidationErrors(err)
	}
	return nil
}

func cueValidationErrors(err error) []ValidationError {
	var errs []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "document"
		}
		format, args := e.Msg()
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchemaViolation,
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{Field: "document", Message: err.Error(), Code: ErrSchemaViolation})
	}
	return errs
}
