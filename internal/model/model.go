// Package model defines the input contract for solved optimization models.
// The result database treats a solved model as a read-only structure: per
// component an attribute map for query matching, and per output mode a numeric
// sequence aligned to the model's shared snapshot axis. The upstream solver's
// correctness is not validated here, only structural shape.
package model

import (
	"fmt"
)

// Solved is one solved model's output as handed over by the optimization
// engine. It is consumed once at entry construction and never mutated.
type Solved struct {
	// Name identifies the model run, typically "<model>_<scenario>".
	Name string `yaml:"name" json:"name"`

	// Snapshots is the shared time axis. Every result sequence in every
	// component has exactly one value per snapshot.
	Snapshots []string `yaml:"snapshots" json:"snapshots"`

	Components []Component `yaml:"components" json:"components"`
}

// Component is one solver component: a unique name, static attributes used
// only for predicate matching, and per-mode result sequences.
type Component struct {
	Name       string               `yaml:"name" json:"name"`
	Attributes map[string]string    `yaml:"attributes" json:"attributes"`
	Results    map[string][]float64 `yaml:"results" json:"results"`
}

// Validate checks the structural shape of a solved model: a name, a non-empty
// snapshot axis, unique component names, and every result sequence aligned to
// the snapshot axis.
func (m *Solved) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if len(m.Snapshots) == 0 {
		return fmt.Errorf("model %q has no snapshots", m.Name)
	}

	seen := make(map[string]struct{}, len(m.Components))
	for _, c := range m.Components {
		if c.Name == "" {
			return fmt.Errorf("model %q contains a component without a name", m.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("model %q contains duplicate component %q", m.Name, c.Name)
		}
		seen[c.Name] = struct{}{}

		for mode, values := range c.Results {
			if len(values) != len(m.Snapshots) {
				return fmt.Errorf("component %q mode %q has %d values, expected %d (one per snapshot)",
					c.Name, mode, len(values), len(m.Snapshots))
			}
		}
	}
	return nil
}
