package views

import (
	"fmt"

	"github.com/roach88/spikeview/internal/canon"
)

// View type tags.
const (
	TypeUnitsTable           = "UnitsTable"
	TypeRasterPlot           = "RasterPlot"
	TypeAverageWaveforms     = "AverageWaveforms"
	TypeAutocorrelograms     = "Autocorrelograms"
	TypeCrossCorrelograms    = "CrossCorrelograms"
	TypeUnitSimilarityMatrix = "UnitSimilarityMatrix"
)

// View is a typed view record: *UnitsTable, *RasterPlot, *AverageWaveforms,
// *Autocorrelograms, *CrossCorrelograms or *UnitSimilarityMatrix.
type View interface {
	Type() string
	Value() (canon.Value, error)
	view()
}

// Column describes one UnitsTable column. Dtype is "int", "float" or "string".
type Column struct {
	Key   string
	Label string
	Dtype string
}

// UnitRow is one UnitsTable row.
type UnitRow struct {
	UnitID int
	Values canon.Object
}

// UnitsTable lists one row per unit with a value for each column.
type UnitsTable struct {
	Columns []Column
	Rows    []UnitRow
}

// RasterTrain is the spike times of one unit in seconds.
type RasterTrain struct {
	UnitID        int
	SpikeTimesSec []float32
}

// RasterPlot shows every unit's spikes over [StartTimeSec, EndTimeSec].
type RasterPlot struct {
	StartTimeSec float64
	EndTimeSec   float64
	Plots        []RasterTrain
}

// UnitWaveform is the mean snippet of one unit, channels x samples.
type UnitWaveform struct {
	UnitID     int
	ChannelIDs []int32
	Waveform   [][]float32
}

// AverageWaveforms holds the mean waveform of each unit. NoiseLevel is the
// estimated noise standard deviation of the recording.
type AverageWaveforms struct {
	AverageWaveforms  []UnitWaveform
	SamplingFrequency float64
	NoiseLevel        float64
}

// UnitCorrelogram is the autocorrelogram of one unit. BinEdgesSec has one
// more entry than BinCounts.
type UnitCorrelogram struct {
	UnitID      int
	BinEdgesSec []float32
	BinCounts   []int32
}

// Autocorrelograms holds one autocorrelogram per unit.
type Autocorrelograms struct {
	Autocorrelograms []UnitCorrelogram
}

// PairCorrelogram is the cross-correlogram of UnitID2 relative to UnitID1.
type PairCorrelogram struct {
	UnitID1     int
	UnitID2     int
	BinEdgesSec []float32
	BinCounts   []int32
}

// CrossCorrelograms holds one cross-correlogram per unit pair.
type CrossCorrelograms struct {
	CrossCorrelograms []PairCorrelogram
}

// Similarity scores one unit pair.
type Similarity struct {
	UnitID1    int
	UnitID2    int
	Similarity float32
}

// UnitSimilarityMatrix lists the units and the similarity of each pair.
type UnitSimilarityMatrix struct {
	UnitIDs          []int
	SimilarityScores []Similarity
}

func (*UnitsTable) Type() string           { return TypeUnitsTable }
func (*RasterPlot) Type() string           { return TypeRasterPlot }
func (*AverageWaveforms) Type() string     { return TypeAverageWaveforms }
func (*Autocorrelograms) Type() string     { return TypeAutocorrelograms }
func (*CrossCorrelograms) Type() string    { return TypeCrossCorrelograms }
func (*UnitSimilarityMatrix) Type() string { return TypeUnitSimilarityMatrix }

func (*UnitsTable) view()           {}
func (*RasterPlot) view()           {}
func (*AverageWaveforms) view()     {}
func (*Autocorrelograms) view()     {}
func (*CrossCorrelograms) view()    {}
func (*UnitSimilarityMatrix) view() {}

// Value encodes the table as a tagged canonical record. The other views
// follow the same pattern.
func (v *UnitsTable) Value() (canon.Value, error) {
	columns := make(canon.Array, len(v.Columns))
	for i, c := range v.Columns {
		columns[i] = canon.NewObject(
			canon.P("key", canon.String(c.Key)),
			canon.P("label", canon.String(c.Label)),
			canon.P("dtype", canon.String(c.Dtype)),
		)
	}
	rows := make(canon.Array, len(v.Rows))
	for i, r := range v.Rows {
		values := r.Values
		if values == nil {
			values = canon.Object{}
		}
		rows[i] = canon.NewObject(
			canon.P("unitId", canon.Int(r.UnitID)),
			canon.P("values", values),
		)
	}
	return record(TypeUnitsTable,
		canon.P("columns", columns),
		canon.P("rows", rows),
	), nil
}

func (v *RasterPlot) Value() (canon.Value, error) {
	plots := make(canon.Array, len(v.Plots))
	for i, p := range v.Plots {
		plots[i] = canon.NewObject(
			canon.P("unitId", canon.Int(p.UnitID)),
			canon.P("spikeTimesSec", canon.Float32Array(p.SpikeTimesSec)),
		)
	}
	return record(TypeRasterPlot,
		canon.P("startTimeSec", canon.Float(v.StartTimeSec)),
		canon.P("endTimeSec", canon.Float(v.EndTimeSec)),
		canon.P("plots", plots),
	), nil
}

func (v *AverageWaveforms) Value() (canon.Value, error) {
	waveforms := make(canon.Array, len(v.AverageWaveforms))
	for i, w := range v.AverageWaveforms {
		matrix, err := canon.Float32Matrix(w.Waveform)
		if err != nil {
			return nil, fmt.Errorf("unit %d waveform: %w", w.UnitID, err)
		}
		waveforms[i] = canon.NewObject(
			canon.P("unitId", canon.Int(w.UnitID)),
			canon.P("channelIds", canon.Int32Array(w.ChannelIDs)),
			canon.P("waveform", matrix),
		)
	}
	return record(TypeAverageWaveforms,
		canon.P("averageWaveforms", waveforms),
		canon.P("samplingFrequency", canon.Float(v.SamplingFrequency)),
		canon.P("noiseLevel", canon.Float(v.NoiseLevel)),
	), nil
}

func (v *Autocorrelograms) Value() (canon.Value, error) {
	items := make(canon.Array, len(v.Autocorrelograms))
	for i, c := range v.Autocorrelograms {
		items[i] = canon.NewObject(
			canon.P("unitId", canon.Int(c.UnitID)),
			canon.P("binEdgesSec", canon.Float32Array(c.BinEdgesSec)),
			canon.P("binCounts", canon.Int32Array(c.BinCounts)),
		)
	}
	return record(TypeAutocorrelograms, canon.P("autocorrelograms", items)), nil
}

func (v *CrossCorrelograms) Value() (canon.Value, error) {
	items := make(canon.Array, len(v.CrossCorrelograms))
	for i, c := range v.CrossCorrelograms {
		items[i] = canon.NewObject(
			canon.P("unitId1", canon.Int(c.UnitID1)),
			canon.P("unitId2", canon.Int(c.UnitID2)),
			canon.P("binEdgesSec", canon.Float32Array(c.BinEdgesSec)),
			canon.P("binCounts", canon.Int32Array(c.BinCounts)),
		)
	}
	return record(TypeCrossCorrelograms, canon.P("crossCorrelograms", items)), nil
}

func (v *UnitSimilarityMatrix) Value() (canon.Value, error) {
	scores := make(canon.Array, len(v.SimilarityScores))
	for i, s := range v.SimilarityScores {
		scores[i] = canon.NewObject(
			canon.P("unitId1", canon.Int(s.UnitID1)),
			canon.P("unitId2", canon.Int(s.UnitID2)),
			canon.P("similarity", canon.Float(s.Similarity)),
		)
	}
	return record(TypeUnitSimilarityMatrix,
		canon.P("unitIds", canon.Ints(v.UnitIDs)),
		canon.P("similarityScores", scores),
	), nil
}

func record(typ string, pairs ...canon.Pair) canon.Object {
	obj := canon.NewObject(pairs...)
	obj["type"] = canon.String(typ)
	return obj
}
