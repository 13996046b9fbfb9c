package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/spikeview/internal/correlogram"
)

// Outcome is the result of running a scenario.
type Outcome struct {
	Result correlogram.Result
	// Err is the engine error, if any.
	Err error
}

// ErrorCode returns the correlogram error code of Err, or "" when the run
// succeeded or failed with an error of another kind.
func (o *Outcome) ErrorCode() string {
	var ce *correlogram.ConfigError
	if errors.As(o.Err, &ce) {
		return string(ce.Code)
	}
	return ""
}

// Run computes the scenario's correlogram.
func Run(s *Scenario) *Outcome {
	var (
		res correlogram.Result
		err error
	)
	if s.Auto() {
		res, err = correlogram.Auto(s.Train, s.Params())
	} else {
		res, err = correlogram.Cross(s.Train, *s.Train2, s.Params())
	}
	return &Outcome{Result: res, Err: err}
}

// Check compares an outcome with the scenario's expectations and returns
// one message per mismatch.
func Check(s *Scenario, o *Outcome) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if s.Expect.Error != "" {
		switch {
		case o.Err == nil:
			fail("expected error %s, got success", s.Expect.Error)
		case o.ErrorCode() != s.Expect.Error:
			fail("expected error %s, got %v", s.Expect.Error, o.Err)
		}
		return failures
	}

	if o.Err != nil {
		return append(failures, fmt.Sprintf("unexpected error: %v", o.Err))
	}

	r := o.Result
	if len(r.BinEdges) != len(r.BinCounts)+1 {
		fail("%d edges for %d counts", len(r.BinEdges), len(r.BinCounts))
	}
	for i := 1; i < len(r.BinEdges); i++ {
		if r.BinEdges[i] <= r.BinEdges[i-1] {
			fail("bin edges not increasing at %d", i)
			break
		}
	}
	if !slices.Equal(r.BinCounts, s.Expect.BinCounts) {
		fail("bin_counts = %v, want %v", r.BinCounts, s.Expect.BinCounts)
	}
	if s.Expect.Total != nil && r.Total() != *s.Expect.Total {
		fail("total = %d, want %d", r.Total(), *s.Expect.Total)
	}
	return failures
}

// Render formats a successful outcome as text, one bin per line in
// milliseconds.
func Render(s *Scenario, o *Outcome) string {
	var b strings.Builder
	kind := "cross"
	if s.Auto() {
		kind = "auto"
	}
	fmt.Fprintf(&b, "scenario: %s (%s)\n", s.Name, kind)
	fmt.Fprintf(&b, "bins: %d total: %d\n", len(o.Result.BinCounts), o.Result.Total())
	for i, c := range o.Result.BinCounts {
		fmt.Fprintf(&b, "%.1f..%.1f %d\n", o.Result.BinEdges[i]*1000, o.Result.BinEdges[i+1]*1000, c)
	}
	return b.String()
}
