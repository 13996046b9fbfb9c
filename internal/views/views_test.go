package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/recording"
)

func TestEveryViewHasCanonicalValue(t *testing.T) {
	rec, sorting, err := recording.ToyExample(recording.ToyOptions{Seed: 3, NumUnits: 3, NumChannels: 2, DurationSec: 1, Rate: 10000})
	require.NoError(t, err)
	src := Source{Sorting: sorting, Recording: rec}

	for _, typ := range Types() {
		t.Run(typ, func(t *testing.T) {
			v, err := Build(context.Background(), typ, src, DefaultSettings())
			require.NoError(t, err)

			val, err := v.Value()
			require.NoError(t, err)
			obj, ok := val.(canon.Object)
			require.True(t, ok)
			assert.Equal(t, canon.String(typ), obj["type"])

			_, err = canon.Marshal(val)
			assert.NoError(t, err)
		})
	}
}

func TestRasterPlotValue(t *testing.T) {
	v := &RasterPlot{EndTimeSec: 2, Plots: []RasterTrain{{UnitID: 1, SpikeTimesSec: []float32{0.5}}}}

	val, err := v.Value()
	require.NoError(t, err)

	want := canon.NewObject(
		canon.P("type", canon.String(TypeRasterPlot)),
		canon.P("startTimeSec", canon.Float(0)),
		canon.P("endTimeSec", canon.Float(2)),
		canon.P("plots", canon.Array{canon.NewObject(
			canon.P("unitId", canon.Int(1)),
			canon.P("spikeTimesSec", canon.Float32Array([]float32{0.5})),
		)}),
	)
	assert.True(t, canon.Equal(want, val))
}

func TestUnitsTableValueFillsEmptyValues(t *testing.T) {
	v := &UnitsTable{Rows: []UnitRow{{UnitID: 2}}}

	val, err := v.Value()
	require.NoError(t, err)
	rows := val.(canon.Object)["rows"].(canon.Array)
	assert.Equal(t, canon.Object{}, rows[0].(canon.Object)["values"])
}

func TestAverageWaveformsValueRejectsRaggedWaveform(t *testing.T) {
	v := &AverageWaveforms{AverageWaveforms: []UnitWaveform{{
		UnitID:   5,
		Waveform: [][]float32{{1, 2}, {3}},
	}}}

	_, err := v.Value()
	assert.ErrorContains(t, err, "unit 5")
}
