// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/recording"
	"github.com/roach88/spikeview/internal/store"
)

// NewMemoryCAS returns a CAS over a fresh in-memory backend. The CAS is
// closed when the test ends. The backend is returned for write counting.
func NewMemoryCAS(t testing.TB) (*store.CAS, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend()
	cas, err := store.New(backend, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { cas.Close() })
	return cas, backend
}

// Toy returns a small deterministic recording and sorting: three units on
// two channels over two seconds at 10 kHz.
func Toy(t testing.TB) (*recording.MemoryRecording, *recording.MemorySorting) {
	t.Helper()
	rec, sorting, err := recording.ToyExample(recording.ToyOptions{
		Seed:        1,
		NumUnits:    3,
		NumChannels: 2,
		DurationSec: 2,
		Rate:        10000,
	})
	require.NoError(t, err)
	return rec, sorting
}

// Sorting builds an in-memory sorting at 1 kHz from unit trains.
func Sorting(trains map[int][]int64) *recording.MemorySorting {
	return &recording.MemorySorting{Rate: 1000, Trains: trains}
}
