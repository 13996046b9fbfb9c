package views

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/correlogram"
	"github.com/roach88/spikeview/internal/recording"
)

// ErrNeedsRecording is returned by builders that read traces when the
// source has no recording.
var ErrNeedsRecording = errors.New("view needs a recording")

// madScale converts a median absolute deviation to a Gaussian standard deviation.
const madScale = 0.6745

// Source is the data a view is built from. Recording may be nil.
type Source struct {
	Sorting   recording.Sorting
	Recording recording.Recording
	// DurationSec is used when there is no recording.
	DurationSec float64
}

// Duration returns the recording length, falling back to DurationSec.
func (s Source) Duration() float64 {
	if s.Recording != nil {
		return recording.DurationSec(s.Recording)
	}
	return s.DurationSec
}

// Settings configures the builders.
type Settings struct {
	WindowSec      float64 // correlogram half-window
	BinSec         float64
	Workers        int
	SnippetBefore  int // samples before each spike
	SnippetAfter   int // samples after each spike
	NoiseWindowSec float64
}

// DefaultSettings matches the published viewer defaults: a 50 ms window
// with 1 ms bins and 20+20 sample snippets.
func DefaultSettings() Settings {
	return Settings{
		WindowSec:      0.05,
		BinSec:         0.001,
		SnippetBefore:  20,
		SnippetAfter:   20,
		NoiseWindowSec: 60,
	}
}

// BuildFunc builds one view type.
type BuildFunc func(ctx context.Context, src Source, s Settings) (View, error)

type kind struct {
	build          BuildFunc
	needsRecording bool
}

var kinds = map[string]kind{
	TypeUnitsTable:           {build: wrap(BuildUnitsTable)},
	TypeRasterPlot:           {build: wrap(BuildRasterPlot)},
	TypeAutocorrelograms:     {build: wrap(BuildAutocorrelograms)},
	TypeCrossCorrelograms:    {build: wrap(BuildCrossCorrelograms)},
	TypeAverageWaveforms:     {build: wrap(BuildAverageWaveforms), needsRecording: true},
	TypeUnitSimilarityMatrix: {build: wrap(BuildUnitSimilarityMatrix), needsRecording: true},
}

func wrap[V View](fn func(context.Context, Source, Settings) (V, error)) BuildFunc {
	return func(ctx context.Context, src Source, s Settings) (View, error) {
		v, err := fn(ctx, src, s)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Types returns every known view type in sorted order.
func Types() []string {
	out := make([]string, 0, len(kinds))
	for t := range kinds {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Known reports whether typ is a view type.
func Known(typ string) bool {
	_, ok := kinds[typ]
	return ok
}

// NeedsRecording reports whether building typ reads traces.
func NeedsRecording(typ string) bool {
	return kinds[typ].needsRecording
}

// Build builds a view of the given type.
func Build(ctx context.Context, typ string, src Source, s Settings) (View, error) {
	k, ok := kinds[typ]
	if !ok {
		return nil, fmt.Errorf("unknown view type %q", typ)
	}
	if k.needsRecording && src.Recording == nil {
		return nil, fmt.Errorf("%s: %w", typ, ErrNeedsRecording)
	}
	return k.build(ctx, src, s)
}

// BuildUnitsTable lists event counts and firing rates per unit.
func BuildUnitsTable(ctx context.Context, src Source, _ Settings) (*UnitsTable, error) {
	duration := src.Duration()
	if duration <= 0 {
		return nil, errors.New("units table: recording duration is unknown")
	}

	table := &UnitsTable{
		Columns: []Column{
			{Key: "unitId", Label: "Unit", Dtype: "int"},
			{Key: "numEvents", Label: "Num. events", Dtype: "int"},
			{Key: "firingRateHz", Label: "Firing rate (Hz)", Dtype: "float"},
		},
	}
	for _, id := range src.Sorting.UnitIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		train, err := src.Sorting.SpikeTrain(id)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", id, err)
		}
		table.Rows = append(table.Rows, UnitRow{
			UnitID: id,
			Values: unitValues(id, len(train), float64(len(train))/duration),
		})
	}
	return table, nil
}

// BuildRasterPlot converts spike trains to seconds.
func BuildRasterPlot(ctx context.Context, src Source, _ Settings) (*RasterPlot, error) {
	rate := src.Sorting.SamplingFrequency()
	if rate <= 0 {
		return nil, fmt.Errorf("raster plot: invalid sampling frequency %v", rate)
	}

	plot := &RasterPlot{StartTimeSec: 0, EndTimeSec: src.Duration()}
	for _, id := range src.Sorting.UnitIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		train, err := src.Sorting.SpikeTrain(id)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", id, err)
		}
		times := make([]float32, len(train))
		for i, t := range train {
			times[i] = float32(float64(t) / rate)
		}
		plot.Plots = append(plot.Plots, RasterTrain{UnitID: id, SpikeTimesSec: times})
	}
	return plot, nil
}

func unitValues(id, numEvents int, rate float64) canon.Object {
	return canon.NewObject(
		canon.P("unitId", canon.Int(id)),
		canon.P("numEvents", canon.Int(numEvents)),
		canon.P("firingRateHz", canon.Float(rate)),
	)
}

func (s Settings) params(rate float64) correlogram.Params {
	return correlogram.Params{WindowSize: s.WindowSec, BinSize: s.BinSec, SamplingRate: rate}
}

// BuildAutocorrelograms computes one autocorrelogram per unit in parallel.
func BuildAutocorrelograms(ctx context.Context, src Source, s Settings) (*Autocorrelograms, error) {
	trains, ids, err := loadTrains(src.Sorting)
	if err != nil {
		return nil, err
	}
	jobs := make([]correlogram.Job, len(ids))
	for i, id := range ids {
		jobs[i] = correlogram.AutoJob(id, trains[i])
	}

	batch := correlogram.Batch{Params: s.params(src.Sorting.SamplingFrequency()), Workers: s.Workers}
	results, err := batch.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	view := &Autocorrelograms{}
	for i, res := range results {
		counts, err := int32s(res.BinCounts)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", ids[i], err)
		}
		view.Autocorrelograms = append(view.Autocorrelograms, UnitCorrelogram{
			UnitID:      ids[i],
			BinEdgesSec: float32s(res.BinEdges),
			BinCounts:   counts,
		})
	}
	return view, nil
}

// BuildCrossCorrelograms computes a correlogram for every ordered unit
// pair. The diagonal holds autocorrelograms, which skip each spike's
// pairing with itself.
func BuildCrossCorrelograms(ctx context.Context, src Source, s Settings) (*CrossCorrelograms, error) {
	trains, ids, err := loadTrains(src.Sorting)
	if err != nil {
		return nil, err
	}
	jobs := make([]correlogram.Job, 0, len(ids)*len(ids))
	for i, id1 := range ids {
		for j, id2 := range ids {
			if i == j {
				jobs = append(jobs, correlogram.AutoJob(id1, trains[i]))
			} else {
				jobs = append(jobs, correlogram.CrossJob(id1, id2, trains[i], trains[j]))
			}
		}
	}

	batch := correlogram.Batch{Params: s.params(src.Sorting.SamplingFrequency()), Workers: s.Workers}
	results, err := batch.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	view := &CrossCorrelograms{}
	for i, res := range results {
		counts, err := int32s(res.BinCounts)
		if err != nil {
			return nil, fmt.Errorf("units %d/%d: %w", jobs[i].Unit1, jobs[i].Unit2, err)
		}
		view.CrossCorrelograms = append(view.CrossCorrelograms, PairCorrelogram{
			UnitID1:     jobs[i].Unit1,
			UnitID2:     jobs[i].Unit2,
			BinEdgesSec: float32s(res.BinEdges),
			BinCounts:   counts,
		})
	}
	return view, nil
}

// BuildAverageWaveforms averages a snippet around every spike of each unit
// and estimates the noise level of the recording.
func BuildAverageWaveforms(ctx context.Context, src Source, s Settings) (*AverageWaveforms, error) {
	if src.Recording == nil {
		return nil, fmt.Errorf("%s: %w", TypeAverageWaveforms, ErrNeedsRecording)
	}
	noise, err := NoiseLevel(src.Recording, s.NoiseWindowSec)
	if err != nil {
		return nil, err
	}
	waveforms, err := averageWaveforms(ctx, src, s)
	if err != nil {
		return nil, err
	}
	channels, err := channelIDs32(src.Recording.ChannelIDs())
	if err != nil {
		return nil, err
	}

	view := &AverageWaveforms{
		SamplingFrequency: src.Recording.SamplingFrequency(),
		NoiseLevel:        noise,
	}
	for _, w := range waveforms {
		rows := make([][]float32, len(w.perChannel))
		for c, samples := range w.perChannel {
			rows[c] = float32s(samples)
		}
		view.AverageWaveforms = append(view.AverageWaveforms, UnitWaveform{
			UnitID:     w.unitID,
			ChannelIDs: channels,
			Waveform:   rows,
		})
	}
	return view, nil
}

// BuildUnitSimilarityMatrix scores every ordered unit pair by the cosine
// similarity of their flattened average waveforms.
func BuildUnitSimilarityMatrix(ctx context.Context, src Source, s Settings) (*UnitSimilarityMatrix, error) {
	if src.Recording == nil {
		return nil, fmt.Errorf("%s: %w", TypeUnitSimilarityMatrix, ErrNeedsRecording)
	}
	waveforms, err := averageWaveforms(ctx, src, s)
	if err != nil {
		return nil, err
	}

	flat := make([][]float64, len(waveforms))
	view := &UnitSimilarityMatrix{}
	for i, w := range waveforms {
		for _, samples := range w.perChannel {
			flat[i] = append(flat[i], samples...)
		}
		view.UnitIDs = append(view.UnitIDs, w.unitID)
	}
	for i := range waveforms {
		for j := range waveforms {
			view.SimilarityScores = append(view.SimilarityScores, Similarity{
				UnitID1:    waveforms[i].unitID,
				UnitID2:    waveforms[j].unitID,
				Similarity: float32(cosine(flat[i], flat[j])),
			})
		}
	}
	return view, nil
}

// cosine returns 0 when either vector has zero norm.
func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

type unitWaveform struct {
	unitID     int
	perChannel [][]float64 // channels x samples
}

// averageWaveforms computes the mean snippet per unit. Samples that fall
// outside the recording contribute zero, and the sum is divided by the
// number of spikes. A unit without spikes has an all-zero waveform.
func averageWaveforms(ctx context.Context, src Source, s Settings) ([]unitWaveform, error) {
	if s.SnippetBefore < 0 || s.SnippetAfter < 0 || s.SnippetBefore+s.SnippetAfter == 0 {
		return nil, fmt.Errorf("invalid snippet length %d+%d", s.SnippetBefore, s.SnippetAfter)
	}
	rec := src.Recording
	numFrames := rec.NumFrames()
	numChannels := len(rec.ChannelIDs())
	length := s.SnippetBefore + s.SnippetAfter

	var out []unitWaveform
	for _, id := range src.Sorting.UnitIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		train, err := src.Sorting.SpikeTrain(id)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", id, err)
		}

		sum := make([][]float64, numChannels)
		for c := range sum {
			sum[c] = make([]float64, length)
		}
		for _, t := range train {
			first := t - int64(s.SnippetBefore)
			start, end := max(first, 0), min(first+int64(length), numFrames)
			if start >= end {
				continue
			}
			rows, err := rec.Traces(start, end)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", id, err)
			}
			for i, row := range rows {
				k := int(start - first + int64(i))
				for c := 0; c < numChannels && c < len(row); c++ {
					sum[c][k] += float64(row[c])
				}
			}
		}
		if len(train) > 0 {
			for c := range sum {
				floats.Scale(1/float64(len(train)), sum[c])
			}
		}
		out = append(out, unitWaveform{unitID: id, perChannel: sum})
	}
	return out, nil
}

// NoiseLevel estimates the noise standard deviation as the median absolute
// amplitude over the first windowSec seconds divided by 0.6745.
func NoiseLevel(rec recording.Recording, windowSec float64) (float64, error) {
	end := rec.NumFrames()
	if windowSec > 0 {
		end = min(end, int64(rec.SamplingFrequency()*windowSec))
	}
	if end <= 0 {
		return 0, nil
	}
	rows, err := rec.Traces(0, end)
	if err != nil {
		return 0, fmt.Errorf("noise level: %w", err)
	}

	abs := make([]float64, 0, len(rows)*len(rec.ChannelIDs()))
	for _, row := range rows {
		for _, x := range row {
			abs = append(abs, math.Abs(float64(x)))
		}
	}
	return median(abs) / madScale, nil
}

// median sorts xs in place and averages the middle pair for even lengths.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[mid]
	}
	return (xs[mid-1] + xs[mid]) / 2
}

func loadTrains(s recording.Sorting) ([][]int64, []int, error) {
	ids := s.UnitIDs()
	trains := make([][]int64, len(ids))
	for i, id := range ids {
		train, err := s.SpikeTrain(id)
		if err != nil {
			return nil, nil, fmt.Errorf("unit %d: %w", id, err)
		}
		trains[i] = train
	}
	return trains, ids, nil
}
