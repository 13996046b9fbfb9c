package recording

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SortingFile is the on-disk sorting format (YAML, or JSON as YAML).
//
//	sampling_frequency: 30000
//	units:
//	  - id: 1
//	    spike_train: [120, 480, 933]
type SortingFile struct {
	SamplingFrequency float64     `yaml:"sampling_frequency"`
	NumFrames         int64       `yaml:"num_frames,omitempty"`
	Units             []UnitTrain `yaml:"units"`
}

// UnitTrain is one unit in a SortingFile.
type UnitTrain struct {
	ID         int     `yaml:"id"`
	SpikeTrain []int64 `yaml:"spike_train"`
}

// LoadSortingFile reads and validates a sorting file.
// Returns an error if the file contains unknown fields, duplicate units or
// spike trains that are negative or out of order.
func LoadSortingFile(path string) (*MemorySorting, *SortingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sorting file: %w", err)
	}

	var file SortingFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sorting file: %w", err)
	}

	sorting, err := file.Sorting()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sorting file %s: %w", path, err)
	}
	return sorting, &file, nil
}

// Sorting validates the file contents and converts them to a MemorySorting.
func (f *SortingFile) Sorting() (*MemorySorting, error) {
	if f.SamplingFrequency <= 0 {
		return nil, fmt.Errorf("sampling_frequency must be positive, got %v", f.SamplingFrequency)
	}
	s := &MemorySorting{Rate: f.SamplingFrequency, Trains: make(map[int][]int64, len(f.Units))}
	for i, u := range f.Units {
		if _, dup := s.Trains[u.ID]; dup {
			return nil, fmt.Errorf("units[%d]: duplicate unit id %d", i, u.ID)
		}
		for j, t := range u.SpikeTrain {
			if t < 0 {
				return nil, fmt.Errorf("units[%d].spike_train[%d]: negative sample index %d", i, j, t)
			}
			if j > 0 && t < u.SpikeTrain[j-1] {
				return nil, fmt.Errorf("units[%d].spike_train[%d]: sample %d is before %d", i, j, t, u.SpikeTrain[j-1])
			}
			if f.NumFrames > 0 && t >= f.NumFrames {
				return nil, fmt.Errorf("units[%d].spike_train[%d]: sample %d beyond num_frames %d", i, j, t, f.NumFrames)
			}
		}
		s.Trains[u.ID] = u.SpikeTrain
	}
	return s, nil
}

// DurationSec returns num_frames in seconds, or the time just after the
// last spike when num_frames is absent.
func (f *SortingFile) DurationSec() float64 {
	if f.SamplingFrequency <= 0 {
		return 0
	}
	frames := f.NumFrames
	if frames == 0 {
		for _, u := range f.Units {
			if n := len(u.SpikeTrain); n > 0 && u.SpikeTrain[n-1]+1 > frames {
				frames = u.SpikeTrain[n-1] + 1
			}
		}
	}
	return float64(frames) / f.SamplingFrequency
}
