// Package recording defines the accessors the publisher reads spike-sorting
// results through, with in-memory implementations, a deterministic toy
// dataset and a YAML/JSON sorting file loader.
package recording

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownUnit is returned for a unit id the sorting does not contain.
var ErrUnknownUnit = errors.New("unknown unit")

// Sorting exposes the result of a spike sorter.
type Sorting interface {
	// UnitIDs returns unit ids in ascending order.
	UnitIDs() []int
	// SpikeTrain returns the non-decreasing sample indices of one unit.
	SpikeTrain(unitID int) ([]int64, error)
	SamplingFrequency() float64
}

// Recording exposes raw extracellular traces.
type Recording interface {
	SamplingFrequency() float64
	NumFrames() int64
	ChannelIDs() []int
	// Traces returns frames [start, end) as rows of one sample per channel.
	Traces(start, end int64) ([][]float32, error)
}

// MemorySorting is a Sorting held in memory.
type MemorySorting struct {
	Rate   float64
	Trains map[int][]int64
}

func (s *MemorySorting) UnitIDs() []int {
	ids := make([]int, 0, len(s.Trains))
	for id := range s.Trains {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *MemorySorting) SpikeTrain(unitID int) ([]int64, error) {
	train, ok := s.Trains[unitID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, unitID)
	}
	return train, nil
}

func (s *MemorySorting) SamplingFrequency() float64 {
	return s.Rate
}

// MemoryRecording is a Recording held in memory as frames x channels.
type MemoryRecording struct {
	Rate     float64
	Channels []int
	Data     [][]float32
}

func (r *MemoryRecording) SamplingFrequency() float64 {
	return r.Rate
}

func (r *MemoryRecording) NumFrames() int64 {
	return int64(len(r.Data))
}

func (r *MemoryRecording) ChannelIDs() []int {
	return r.Channels
}

func (r *MemoryRecording) Traces(start, end int64) ([][]float32, error) {
	if start < 0 || end < start || end > r.NumFrames() {
		return nil, fmt.Errorf("traces [%d, %d) out of range [0, %d)", start, end, r.NumFrames())
	}
	return r.Data[start:end], nil
}

// DurationSec returns the recording length in seconds.
func DurationSec(r Recording) float64 {
	if r.SamplingFrequency() <= 0 {
		return 0
	}
	return float64(r.NumFrames()) / r.SamplingFrequency()
}
