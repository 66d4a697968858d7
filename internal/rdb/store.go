package rdb

import (
	"sort"

	"github.com/helios-lab/project-helios/internal/model"
)

type seriesKey struct {
	component string
	mode      string
}

// seriesStore holds every (component, mode) value sequence of one entry.
// Sequences are aligned to the entry's snapshot axis and immutable after
// construction; selections copy on read, never mutate.
type seriesStore struct {
	series map[seriesKey][]float64
}

func newSeriesStore(components []model.Component) *seriesStore {
	s := &seriesStore{series: make(map[seriesKey][]float64)}
	for _, c := range components {
		for mode, values := range c.Results {
			owned := make([]float64, len(values))
			copy(owned, values)
			s.series[seriesKey{component: c.Name, mode: mode}] = owned
		}
	}
	return s
}

// get returns the stored sequence for a (component, mode) pair. The returned
// slice is the store's own copy; callers must not mutate it.
func (s *seriesStore) get(component, mode string) ([]float64, bool) {
	values, ok := s.series[seriesKey{component: component, mode: mode}]
	return values, ok
}

// modes returns the output modes stored for a component, sorted.
func (s *seriesStore) modes(component string) []string {
	var out []string
	for key := range s.series {
		if key.component == component {
			out = append(out, key.mode)
		}
	}
	sort.Strings(out)
	return out
}
