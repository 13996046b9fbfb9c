package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/canon"
)

const scrollbarYAML = `
type: SortingLayout
layout:
  type: Box
  direction: horizontal
  items:
    - type: Box
      direction: horizontal
      scrollbar: true
      items:
        - {type: View, viewId: "2"}
        - {type: View, viewId: "2"}
      itemProperties:
        - {minSize: 400}
        - {minSize: 400}
    - type: TabLayout
      items:
        - {type: View, viewId: "3"}
      itemProperties:
        - {label: Waveforms}
views:
  - viewId: "2"
    type: Autocorrelograms
    dataUri: sha256://2222222222222222222222222222222222222222222222222222222222222222
  - viewId: "3"
    type: AverageWaveforms
    dataUri: sha256://3333333333333333333333333333333333333333333333333333333333333333
`

func TestParseDocument_YAML(t *testing.T) {
	doc, err := ParseDocument([]byte(scrollbarYAML))
	require.NoError(t, err)
	require.Empty(t, Validate(doc))

	root, ok := doc.Layout.(*Box)
	require.True(t, ok)
	require.Len(t, root.Items, 2)
	assert.Nil(t, root.ItemProperties)

	inner := root.Items[0].(*Box)
	assert.True(t, inner.Scrollbar)
	assert.Len(t, inner.Items, 2)
	assert.True(t, canon.Equal(canon.Int(400), inner.ItemProperties[1]["minSize"]))

	tab := root.Items[1].(*TabLayout)
	assert.Equal(t, []string{"Waveforms"}, tab.Labels)
}

func TestParseDocument_Composite(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"type":"Composite","layout":"default","views":[{"label":"Raster","type":"RasterPlot","dataUri":"sha256://0000000000000000000000000000000000000000000000000000000000000000","defaultHeight":300}]}`))
	require.NoError(t, err)
	assert.Equal(t, KindComposite, doc.Kind)
	assert.Equal(t, 300, doc.Views[0].DefaultHeight)
	assert.Equal(t, "Raster", doc.Views[0].Label)
	assert.Empty(t, Validate(doc))
}

func TestDecodeNode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
		field string
	}{
		{"not an object", `[1,2]`, ErrUnknownNode, "layout"},
		{"missing type", `{"viewId":"a"}`, ErrUnknownNode, "layout.type"},
		{"unknown type", `{"type":"Mountain","items":[]}`, ErrUnknownNode, "layout.type"},
		{"scalar hint", `{"type":"Box","direction":"vertical","items":[],"itemProperties":[3]}`, ErrMalformedHints, "layout.itemProperties[0]"},
		{"items not a list", `{"type":"Splitter","direction":"vertical","items":{}}`, ErrSchemaViolation, "layout.items"},
		{"nested unknown", `{"type":"Box","direction":"vertical","items":[{"type":"Nope"}]}`, ErrUnknownNode, "layout.items[0].type"},
		{"bad scrollbar", `{"type":"Box","direction":"vertical","items":[],"scrollbar":"yes"}`, ErrSchemaViolation, "layout.scrollbar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := canon.Decode([]byte(tt.input))
			require.NoError(t, err)

			_, err = DecodeNode(v)
			var verrs *ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.NotEmpty(t, verrs.Errors)
			assert.Equal(t, tt.code, verrs.Errors[0].Code)
			assert.Equal(t, tt.field, verrs.Errors[0].Field)
		})
	}
}

func TestDecodeNode_DirectionCheckedByValidate(t *testing.T) {
	v, err := canon.Decode([]byte(`{"type":"Box","direction":"sideways","items":[{"type":"View","viewId":"a"}]}`))
	require.NoError(t, err)

	n, err := DecodeNode(v)
	require.NoError(t, err)
	assert.Equal(t, []string{ErrInvalidDirection}, codes(ValidateTree(n, []string{"a"})))
}

func TestParseDocument_Errors(t *testing.T) {
	_, err := ParseDocument([]byte("{not yaml"))
	assert.Error(t, err)

	_, err = ParseDocument([]byte(`{"type":"Mountain","views":[]}`))
	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(ErrUnknownNode))

	_, err = ParseDocument([]byte(`{"type":"Composite","layout":"grid","views":[]}`))
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(ErrUnknownNode))
}
