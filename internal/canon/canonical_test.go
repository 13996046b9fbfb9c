package canon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(math.MaxInt64), "9223372036854775807"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"null", Null{}, "null"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"plain go map", map[string]any{"b": true, "a": "x"}, `{"a":"x","b":true}`},
		{"plain go nil", nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalFloats(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"fraction", Float(1.5), "1.5"},
		{"integral", Float(2), "2"},
		{"negative zero", Float(math.Copysign(0, -1)), "0"},
		{"tenth", Float(0.1), "0.1"},
		{"narrowed tenth", Float(float32(0.1)), "0.10000000149011612"},
		{"small", Float(1e-7), "1e-7"},
		{"lower plain bound", Float(1e-6), "0.000001"},
		{"large", Float(1e21), "1e+21"},
		{"below large bound", Float(1e20), "100000000000000000000"},
		{"negative exponent form", Float(-2.5e-8), "-2.5e-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Marshal(Float(f))
		assert.Error(t, err, "%v must be rejected", f)

		_, err = Marshal(f)
		assert.Error(t, err, "plain %v must be rejected", f)
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"alpha": Int(2),
		"beta":  Int(3),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{
			"b": Int(1),
			"a": Int(2),
		},
		"a": Int(3),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8 order.
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)

	// U+10000 encodes as the surrogate pair 0xD800 0xDC00, which sorts before 0xE000.
	expected := "{\"\U00010000\":2,\"\uE000\":1}"
	assert.Equal(t, expected, string(result))
}

func TestMarshalNoHTMLEscaping(t *testing.T) {
	result, err := Marshal(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalNFCNormalization(t *testing.T) {
	decomposed := String("e\u0301")
	composed := String("\u00e9")

	a, err := Marshal(decomposed)
	require.NoError(t, err)
	b, err := Marshal(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
	assert.Equal(t, "\"\u00e9\"", string(a))
}

func TestMarshalNormalizesKeysBeforeSorting(t *testing.T) {
	// "e\u0301" sorts before "f" unnormalized; "\u00e9" sorts after it.
	result, err := Marshal(Object{"e\u0301": Int(1), "f": Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "{\"f\":2,\"\u00e9\":1}", string(result))
}

func TestMarshalRejectsKeysEqualAfterNFC(t *testing.T) {
	_, err := Marshal(Object{"e\u0301": Int(1), "\u00e9": Int(2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NFC")
}

func TestMarshalRejectsReservedTag(t *testing.T) {
	_, err := Marshal(Object{"_type": String("ndarray"), "note": String("user data")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")

	_, err = Marshal(Array{Object{"_type": String("ndarray")}})
	assert.Error(t, err, "nested objects are checked too")

	_, err = Marshal(Object{"_type": String("table")})
	assert.NoError(t, err, "other tags are ordinary data")
}

func TestMarshalLineSeparators(t *testing.T) {
	result, err := Marshal(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" must stay escaped.
	result, err = Marshal(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalControlCharacters(t *testing.T) {
	result, err := Marshal(String("tab\tquote\"back\\"))
	require.NoError(t, err)
	assert.Equal(t, `"tab\tquote\"back\\"`, string(result))
}

func TestMarshalNilValueIsError(t *testing.T) {
	_, err := Marshal(Object{"a": nil})
	assert.Error(t, err)
}

func TestMarshalDeterministic(t *testing.T) {
	obj := Object{
		"views": Array{
			Object{"viewId": String("0"), "type": String("RasterPlot")},
			Object{"viewId": String("1"), "type": String("UnitsTable")},
		},
		"type": String("SortingLayout"),
	}

	first, err := Marshal(obj)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Marshal(obj)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}
