package rdb

import (
	"sort"
	"sync"

	"github.com/helios-lab/project-helios/internal/model"
	"github.com/helios-lab/project-helios/internal/query"
)

// Set is a predicate match result: an unordered set of component names.
type Set map[string]struct{}

// Sorted returns the set's members sorted by identifier. Selections over a
// set target use this order so results stay reproducible.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Contains reports set membership.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Entry wraps one solved model's output: the shared snapshot axis, the
// metadata index, the series store, and the registry of materialized tables.
// Everything except the table registry is immutable after construction.
type Entry struct {
	id        string
	name      string
	snapshots []string
	meta      *Index
	store     *seriesStore

	mu     sync.RWMutex
	tables map[string]*Result
}

// newEntry eagerly builds the metadata index and series store from a solved
// model. Solved models are assumed to fit in memory; there is no lazy path.
func newEntry(id, name string, m *model.Solved) (*Entry, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	snapshots := make([]string, len(m.Snapshots))
	copy(snapshots, m.Snapshots)

	return &Entry{
		id:        id,
		name:      name,
		snapshots: snapshots,
		meta:      newIndex(m.Components),
		store:     newSeriesStore(m.Components),
		tables:    make(map[string]*Result),
	}, nil
}

// ID returns the entry's stable identifier assigned by the database.
func (e *Entry) ID() string { return e.id }

// Name returns the sanitized model name the entry was registered under.
func (e *Entry) Name() string { return e.name }

// Snapshots returns the entry's time axis for downstream axis labeling.
func (e *Entry) Snapshots() []string {
	out := make([]string, len(e.snapshots))
	copy(out, e.snapshots)
	return out
}

// Metadata returns the entry's read-only metadata index. Diagram export and
// the inspection UI consume the component/attribute contract through this.
func (e *Entry) Metadata() *Index { return e.meta }

// Modes returns the output modes stored for a component, sorted.
func (e *Entry) Modes(component string) ([]string, error) {
	if !e.meta.HasComponent(component) {
		return nil, ErrComponentNotFound
	}
	return e.store.modes(component), nil
}

// Query evaluates a predicate string against the metadata index and returns
// the matching component set. An empty set is a valid result; an attribute
// unknown to every component is an error.
func (e *Entry) Query(predicate string) (Set, error) {
	expr, err := query.Parse(predicate)
	if err != nil {
		return nil, err
	}
	return e.meta.match(predicate, expr)
}

// Select produces a selection result for the given components and output
// mode, preserving the given column order. All-or-nothing: any component
// missing a series for the mode fails the whole selection.
func (e *Entry) Select(components []string, mode string, opts ...SelectOption) (*Result, error) {
	cfg := selectConfig{sign: 1.0}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newResult(e, components, mode, cfg)
}

// SelectSet selects a predicate match result, imposing sort-by-identifier
// column order.
func (e *Entry) SelectSet(set Set, mode string, opts ...SelectOption) (*Result, error) {
	return e.Select(set.Sorted(), mode, opts...)
}

// Materialize stores a selection result under a name for the entry's
// lifetime, silently overwriting on name collision.
func (e *Entry) Materialize(r *Result, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tables[name] = r
}

// Table returns a materialized table by name.
func (e *Entry) Table(name string) (*Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.tables[name]
	return r, ok
}

// Tables returns the names of all materialized tables, sorted.
func (e *Entry) Tables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
