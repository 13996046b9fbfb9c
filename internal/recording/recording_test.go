package recording

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySorting(t *testing.T) {
	s := &MemorySorting{Rate: 1000, Trains: map[int][]int64{3: {1, 2}, 1: {5}, 2: nil}}

	assert.Equal(t, []int{1, 2, 3}, s.UnitIDs())
	train, err := s.SpikeTrain(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, train)

	_, err = s.SpikeTrain(9)
	assert.True(t, errors.Is(err, ErrUnknownUnit))
}

func TestMemoryRecordingTraces(t *testing.T) {
	r := &MemoryRecording{Rate: 10, Channels: []int{7}, Data: [][]float32{{1}, {2}, {3}}}

	got, err := r.Traces(1, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2}, {3}}, got)
	assert.Equal(t, 0.3, DurationSec(r))

	_, err = r.Traces(2, 4)
	assert.Error(t, err)
	_, err = r.Traces(2, 1)
	assert.Error(t, err)
}

func TestToyExampleIsDeterministic(t *testing.T) {
	opts := ToyOptions{Seed: 7, NumUnits: 3, NumChannels: 4, DurationSec: 2, Rate: 10000}

	r1, s1, err := ToyExample(opts)
	require.NoError(t, err)
	r2, s2, err := ToyExample(opts)
	require.NoError(t, err)

	assert.Equal(t, s1.Trains, s2.Trains)
	assert.Equal(t, r1.Data[100], r2.Data[100])
	assert.Equal(t, int64(20000), r1.NumFrames())
	assert.Equal(t, []int{1, 2, 3, 4}, r1.ChannelIDs())
	assert.Equal(t, []int{1, 2, 3}, s1.UnitIDs())

	r3, _, err := ToyExample(ToyOptions{Seed: 8, NumUnits: 3, NumChannels: 4, DurationSec: 2, Rate: 10000})
	require.NoError(t, err)
	assert.NotEqual(t, r1.Data[100], r3.Data[100])
}

func TestToyExampleTrainsAreSortedAndRefractory(t *testing.T) {
	_, s, err := ToyExample(ToyOptions{Seed: 1, NumUnits: 4, NumChannels: 2, DurationSec: 5, Rate: 10000})
	require.NoError(t, err)

	minGap := int64(toyRefractory*10000) - 1
	for _, id := range s.UnitIDs() {
		train, err := s.SpikeTrain(id)
		require.NoError(t, err)
		require.NotEmpty(t, train, "unit %d", id)
		for i := 1; i < len(train); i++ {
			assert.GreaterOrEqual(t, train[i]-train[i-1], minGap, "unit %d spike %d", id, i)
		}
		assert.Less(t, train[len(train)-1], int64(50000))
	}
}

func TestToyExampleRejectsBadOptions(t *testing.T) {
	_, _, err := ToyExample(ToyOptions{NumUnits: 1, NumChannels: 0, DurationSec: 1})
	assert.Error(t, err)
	_, _, err = ToyExample(ToyOptions{NumUnits: 1, NumChannels: 1, DurationSec: 0})
	assert.Error(t, err)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sorting.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSortingFile(t *testing.T) {
	path := writeFile(t, `
sampling_frequency: 30000
units:
  - id: 2
    spike_train: [10, 20, 20, 35]
  - id: 1
    spike_train: []
`)
	s, file, err := LoadSortingFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, s.SamplingFrequency())
	assert.Equal(t, []int{1, 2}, s.UnitIDs())
	assert.Len(t, file.Units, 2)

	train, err := s.SpikeTrain(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 20, 35}, train)
}

func TestLoadSortingFileJSON(t *testing.T) {
	path := writeFile(t, `{"sampling_frequency": 1000, "units": [{"id": 5, "spike_train": [0, 10, 20]}]}`)
	s, _, err := LoadSortingFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, s.UnitIDs())
}

func TestLoadSortingFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "sampling_frequency: 1000\nunit: []\n", "field unit not found"},
		{"no rate", "units: []\n", "sampling_frequency must be positive"},
		{"duplicate", "sampling_frequency: 1000\nunits:\n  - {id: 1, spike_train: []}\n  - {id: 1, spike_train: []}\n", "duplicate unit id 1"},
		{"unsorted", "sampling_frequency: 1000\nunits:\n  - {id: 1, spike_train: [5, 3]}\n", "sample 3 is before 5"},
		{"negative", "sampling_frequency: 1000\nunits:\n  - {id: 1, spike_train: [-1]}\n", "negative sample index"},
		{"beyond end", "sampling_frequency: 1000\nnum_frames: 10\nunits:\n  - {id: 1, spike_train: [10]}\n", "beyond num_frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadSortingFile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, _, err := LoadSortingFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSortingFileDuration(t *testing.T) {
	f := &SortingFile{SamplingFrequency: 100, Units: []UnitTrain{{ID: 1, SpikeTrain: []int64{3, 49}}, {ID: 2, SpikeTrain: []int64{9}}}}
	assert.Equal(t, 0.5, f.DurationSec())

	f.NumFrames = 200
	assert.Equal(t, 2.0, f.DurationSec())

	assert.Equal(t, 0.0, (&SortingFile{}).DurationSec())
}
