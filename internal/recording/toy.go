package recording

import (
	"fmt"
	"math"
	"math/rand"
)

// ToyOptions configures ToyExample.
type ToyOptions struct {
	Seed        int64
	NumUnits    int
	NumChannels int
	DurationSec float64
	Rate        float64 // defaults to 30 kHz
}

const (
	toyNoiseSigma   = 10.0
	toyTemplateLen  = 40
	toyTemplateHead = 20
	toyRefractory   = 0.002 // seconds
)

// ToyExample generates a deterministic recording and sorting: each unit
// fires as a refractory Poisson process, and its spikes add a unit-specific
// template over Gaussian noise on every channel.
func ToyExample(opts ToyOptions) (*MemoryRecording, *MemorySorting, error) {
	if opts.NumUnits < 0 || opts.NumChannels <= 0 || opts.DurationSec <= 0 {
		return nil, nil, fmt.Errorf("toy example: need units >= 0, channels > 0 and a positive duration")
	}
	rate := opts.Rate
	if rate == 0 {
		rate = 30000
	}
	numFrames := int64(math.Round(opts.DurationSec * rate))
	rng := rand.New(rand.NewSource(opts.Seed))

	sorting := &MemorySorting{Rate: rate, Trains: make(map[int][]int64, opts.NumUnits)}
	templates := make([][][]float32, opts.NumUnits)
	for u := 0; u < opts.NumUnits; u++ {
		unitID := u + 1
		firingRate := 2 + 8*rng.Float64()
		sorting.Trains[unitID] = poissonTrain(rng, firingRate, rate, numFrames)
		templates[u] = unitTemplate(rng, opts.NumChannels)
	}

	data := make([][]float32, numFrames)
	for f := range data {
		row := make([]float32, opts.NumChannels)
		for c := range row {
			row[c] = float32(rng.NormFloat64() * toyNoiseSigma)
		}
		data[f] = row
	}
	for u := 0; u < opts.NumUnits; u++ {
		for _, t := range sorting.Trains[u+1] {
			for k := 0; k < toyTemplateLen; k++ {
				f := t + int64(k-toyTemplateHead)
				if f < 0 || f >= numFrames {
					continue
				}
				for c := 0; c < opts.NumChannels; c++ {
					data[f][c] += templates[u][c][k]
				}
			}
		}
	}

	channels := make([]int, opts.NumChannels)
	for c := range channels {
		channels[c] = c + 1
	}
	return &MemoryRecording{Rate: rate, Channels: channels, Data: data}, sorting, nil
}

// poissonTrain draws exponential inter-spike intervals plus a refractory gap.
func poissonTrain(rng *rand.Rand, firingRate, rate float64, numFrames int64) []int64 {
	var train []int64
	t := 0.0
	for {
		t += rng.ExpFloat64()/firingRate + toyRefractory
		frame := int64(t * rate)
		if frame >= numFrames {
			return train
		}
		train = append(train, frame)
	}
}

// unitTemplate is a negative Gaussian peak whose amplitude decays with
// distance from a randomly chosen peak channel.
func unitTemplate(rng *rand.Rand, numChannels int) [][]float32 {
	peakChannel := rng.Intn(numChannels)
	amplitude := 50 + 100*rng.Float64()
	width := 2 + 3*rng.Float64()

	tmpl := make([][]float32, numChannels)
	for c := range tmpl {
		scale := amplitude * math.Exp(-math.Abs(float64(c-peakChannel)))
		row := make([]float32, toyTemplateLen)
		for k := range row {
			x := float64(k-toyTemplateHead) / width
			row[k] = float32(-scale * math.Exp(-x*x/2))
		}
		tmpl[c] = row
	}
	return tmpl
}
