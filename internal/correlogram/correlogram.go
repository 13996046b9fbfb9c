package correlogram

import (
	"fmt"
	"math"
)

// snapTolerance absorbs floating point error when a lag or a window ratio
// is meant to be an exact multiple of the bin size.
const snapTolerance = 1e-9

// Params configures the histogram. Times are in seconds.
type Params struct {
	WindowSize   float64 // half-width of the symmetric window
	BinSize      float64
	SamplingRate float64 // Hz; spike trains are sample indices at this rate
}

// Result is a correlogram histogram.
//
// INVARIANTS:
//   - len(BinEdges) == len(BinCounts) + 1
//   - BinEdges is strictly increasing from -WindowSize to +WindowSize
//   - BinCounts is ordered from most negative to most positive lag
type Result struct {
	BinEdges  []float64
	BinCounts []int64
}

// Total returns the sum of all bin counts.
func (r Result) Total() int64 {
	var n int64
	for _, c := range r.BinCounts {
		n += c
	}
	return n
}

// Validate checks the parameters. WindowSize must be a positive multiple of
// BinSize; anything else is an InvalidConfig error.
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"window size", p.WindowSize},
		{"bin size", p.BinSize},
		{"sampling rate", p.SamplingRate},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return invalidConfig("%s must be positive and finite, got %v", f.name, f.v)
		}
	}

	ratio := p.WindowSize / p.BinSize
	n := math.Round(ratio)
	if n < 1 || math.Abs(ratio-n) > snapTolerance*math.Max(1, ratio) {
		return invalidConfig("window size %v is not a positive multiple of bin size %v", p.WindowSize, p.BinSize)
	}
	if n > math.MaxInt32/2 {
		return invalidConfig("window size %v / bin size %v yields too many bins", p.WindowSize, p.BinSize)
	}
	return nil
}

// halfBins returns WindowSize/BinSize. Call only after Validate.
func (p Params) halfBins() int {
	return int(math.Round(p.WindowSize / p.BinSize))
}

// NumBins returns the total bin count, 2*WindowSize/BinSize (always even).
// Call only after Validate.
func (p Params) NumBins() int {
	return 2 * p.halfBins()
}

// BinEdges returns the NumBins()+1 edges in seconds.
func (p Params) BinEdges() []float64 {
	n := p.halfBins()
	edges := make([]float64, 2*n+1)
	for i := range edges {
		edges[i] = float64(i-n) * p.BinSize
	}
	return edges
}

// Auto computes the autocorrelogram of train. The zero-lag pair of each
// spike with itself is excluded; distinct spikes at the same sample still
// count as zero-lag pairs.
func Auto(train []int64, p Params) (Result, error) {
	return compute(train, train, true, p)
}

// Cross computes the cross-correlogram of lags b - a.
func Cross(a, b []int64, p Params) (Result, error) {
	return compute(a, b, false, p)
}

func compute(a, b []int64, auto bool, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if err := checkSorted("train a", a); err != nil {
		return Result{}, err
	}
	if !auto {
		if err := checkSorted("train b", b); err != nil {
			return Result{}, err
		}
	}

	n := p.halfBins()
	res := Result{
		BinEdges:  p.BinEdges(),
		BinCounts: make([]int64, 2*n),
	}
	if len(a) == 0 || len(b) == 0 {
		return res, nil
	}

	samplesPerBin := p.BinSize * p.SamplingRate
	// One sample of slack on each side; binOf discards anything outside.
	reach := int64(math.Ceil(p.WindowSize*p.SamplingRate)) + 1

	lo := 0
	for i, t := range a {
		for lo < len(b) && b[lo] < t-reach {
			lo++
		}
		for j := lo; j < len(b) && b[j] <= t+reach; j++ {
			if auto && i == j {
				continue
			}
			if k, ok := binOf(b[j]-t, samplesPerBin, n); ok {
				res.BinCounts[k]++
			}
		}
	}
	return res, nil
}

// binOf maps a lag in samples to floor((lag + window) / bin). Bins are
// closed below and open above, except that a lag of exactly +window is
// clamped into the last bin so both window edges count.
func binOf(lag int64, samplesPerBin float64, n int) (int, bool) {
	x := float64(lag) / samplesPerBin
	if r := math.Round(x); math.Abs(x-r) < snapTolerance*math.Max(1, math.Abs(x)) {
		x = r
	}
	if x < -float64(n) || x > float64(n) {
		return 0, false
	}
	k := int(math.Floor(x)) + n
	if k == 2*n {
		k--
	}
	return k, true
}

func checkSorted(name string, train []int64) error {
	for i := 1; i < len(train); i++ {
		if train[i] < train[i-1] {
			return &ConfigError{
				Code:    ErrCodeUnsortedTrain,
				Message: fmt.Sprintf("%s is not sorted at index %d (%d after %d)", name, i, train[i], train[i-1]),
			}
		}
	}
	return nil
}
