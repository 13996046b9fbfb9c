package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/spikeview/internal/correlogram"
)

// Scenario defines one correlogram conformance case.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Rate        float64 `yaml:"sampling_rate"`
	WindowMs    float64 `yaml:"window_ms"`
	BinMs       float64 `yaml:"bin_ms"`

	// Train is the reference train. Train2 selects a cross-correlogram;
	// without it the autocorrelogram of Train is computed.
	Train  []int64  `yaml:"train"`
	Train2 *[]int64 `yaml:"train2,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect is the expected outcome. Exactly one of BinCounts or Error is set.
type Expect struct {
	BinCounts []int64 `yaml:"bin_counts,omitempty"`
	// Total is checked when non-nil.
	Total *int64 `yaml:"total,omitempty"`
	// Error is a correlogram error code such as INVALID_CONFIG.
	Error string `yaml:"error,omitempty"`
}

// Auto reports whether the scenario computes an autocorrelogram.
func (s *Scenario) Auto() bool {
	return s.Train2 == nil
}

// Params returns the correlogram parameters in seconds.
func (s *Scenario) Params() correlogram.Params {
	return correlogram.Params{
		WindowSize:   s.WindowMs / 1000,
		BinSize:      s.BinMs / 1000,
		SamplingRate: s.Rate,
	}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("scenario name %q used by %s and %s", s.Name, prev, p)
		}
		names[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
// Rate, window and bin values are left to the engine so that invalid
// configurations can be scenarios themselves.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	hasCounts := s.Expect.BinCounts != nil
	hasError := s.Expect.Error != ""
	if hasCounts == hasError {
		return fmt.Errorf("expect must set exactly one of bin_counts or error")
	}
	if hasError && s.Expect.Total != nil {
		return fmt.Errorf("expect.total cannot be combined with expect.error")
	}
	return nil
}
