package core

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

// Sample is the read-only demonstration data set.
type Sample struct {
	Insight InsightData   `yaml:"insight"`
	Entries EntryStore    `yaml:"entries"`
	Chat    []ChatMessage `yaml:"chat"`
}

// LoadSample decodes the embedded sample data. Each call returns fresh
// values so callers may not alias one another.
func LoadSample() (Sample, error) {
	var s Sample
	if err := yaml.Unmarshal(sampleYAML, &s); err != nil {
		return Sample{}, fmt.Errorf("failed to decode sample data: %w", err)
	}
	entries := NewEntryStore()
	for _, d := range Domains {
		entries[d] = append(entries[d], s.Entries[d]...)
	}
	s.Entries = entries
	return s, nil
}

// MustLoadSample panics if the embedded sample data is invalid.
func MustLoadSample() Sample {
	s, err := LoadSample()
	if err != nil {
		panic(err)
	}
	return s
}
