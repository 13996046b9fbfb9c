package layout

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/canon"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestDocument_SortingLayoutGolden(t *testing.T) {
	data, err := sortingLayoutExample().MarshalCanonical()
	require.NoError(t, err)
	newGoldie(t).Assert(t, "sorting_layout", data)
}

func TestDocument_CompositeGolden(t *testing.T) {
	doc := &Document{Kind: KindComposite}
	for i, typ := range []string{"RasterPlot", "Autocorrelograms", "AverageWaveforms"} {
		doc.Views = append(doc.Views, ViewEntry{Label: typ, Type: typ, DataURI: testAddr(i), DefaultHeight: 300})
	}
	require.Empty(t, Validate(doc))

	data, err := doc.MarshalCanonical()
	require.NoError(t, err)
	newGoldie(t).Assert(t, "composite", data)
}

func TestDocument_OptionalFlagsOmittedWhenFalse(t *testing.T) {
	v, err := NodeValue(&Box{Direction: Vertical, Items: []Node{ViewRef("a")}})
	require.NoError(t, err)
	data, err := canon.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"direction":"vertical","items":[{"type":"View","viewId":"a"}],"type":"Box"}`, string(data))

	v, err = NodeValue(&Box{Direction: Vertical, Items: []Node{}, Scrollbar: true, ShowTitles: true})
	require.NoError(t, err)
	data, err = canon.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"direction":"vertical","items":[],"scrollbar":true,"showTitles":true,"type":"Box"}`, string(data))
}

func TestDocument_TabLayoutEncoding(t *testing.T) {
	v, err := NodeValue(&TabLayout{Items: []Node{ViewRef("x"), ViewRef("y")}, Labels: []string{"X", "Y"}})
	require.NoError(t, err)
	data, err := canon.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t,
		`{"itemProperties":[{"label":"X"},{"label":"Y"}],"items":[{"type":"View","viewId":"x"},{"type":"View","viewId":"y"}],"type":"TabLayout"}`,
		string(data))
}

func TestDocument_EncodingRejectsCycle(t *testing.T) {
	box := VBox(ViewRef("a"))
	box.Items = append(box.Items, box)

	_, err := NodeValue(box)
	assert.ErrorIs(t, err, errCycle)
}

func TestDocument_SharedSubtreeIsNotACycle(t *testing.T) {
	shared := ViewRef("a")
	root := HBox(shared, shared)

	_, err := NodeValue(root)
	assert.NoError(t, err)
	assert.Empty(t, ValidateTree(root, []string{"a"}))
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := sortingLayoutExample()
	data, err := doc.MarshalCanonical()
	require.NoError(t, err)

	decoded, err := ParseDocument(data)
	require.NoError(t, err)

	again, err := decoded.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
	assert.Equal(t, doc.Views, decoded.Views)
}

func TestDocument_ViewLookup(t *testing.T) {
	doc := sortingLayoutExample()
	v, ok := doc.View("2")
	require.True(t, ok)
	assert.Equal(t, "Autocorrelograms", v.Type)

	_, ok = doc.View("9")
	assert.False(t, ok)
}

func TestViewIDs_FirstAppearanceOrder(t *testing.T) {
	root := VBox(HBox(ViewRef("b"), ViewRef("a")), ViewRef("b"), ViewRef("c"))
	assert.Equal(t, []string{"b", "a", "c"}, ViewIDs(root))
}

func TestHint(t *testing.T) {
	h := Hint("minSize", 100, "stretch", 1.5, "title", "Units")
	assert.True(t, canon.Equal(canon.Object{
		"minSize": canon.Int(100),
		"stretch": canon.Float(1.5),
		"title":   canon.String("Units"),
	}, h))
	assert.Empty(t, Hint())
}

func TestHint_PanicsOnBadInput(t *testing.T) {
	assert.PanicsWithValue(t, "layout.Hint: odd argument count 3", func() { Hint("minSize", 100, "stretch") })
	assert.PanicsWithValue(t, "layout.Hint: key 0 is int, not string", func() { Hint(1, 100) })
	assert.Panics(t, func() { Hint("stretch", struct{}{}) })
}
