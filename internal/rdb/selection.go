package rdb

import "fmt"

// SelectOption configures a selection via functional options.
type SelectOption func(*selectConfig)

type selectConfig struct {
	sign       float64
	buckets    int
	aggregated bool // WithBuckets given; 0 or negative still fails validation
}

// WithSign multiplies every selected value element-wise, flipping polarity
// for display conventions (injection vs. withdrawal) without touching the
// stored series.
func WithSign(sign float64) SelectOption {
	return func(c *selectConfig) { c.sign = sign }
}

// WithBuckets partitions the snapshot axis into n contiguous, approximately
// equal buckets and sums each bucket per selected component. The remainder
// goes to the earliest buckets.
func WithBuckets(n int) SelectOption {
	return func(c *selectConfig) {
		c.buckets = n
		c.aggregated = true
	}
}

// Column is one selected component's value sequence.
type Column struct {
	Component string    `json:"component"`
	Values    []float64 `json:"values"`
}

// Result is the table-shaped output of a selection: one column per selected
// component, one row per snapshot (or per aggregation bucket). It carries
// provenance for downstream labeling and, when produced by an entry, a
// reference back to it for materialization.
type Result struct {
	entry *Entry // nil for detached results

	Mode    string   `json:"mode"`
	Sign    float64  `json:"sign"`
	Buckets int      `json:"buckets"` // 0 when not aggregated
	Columns []Column `json:"columns"`

	labels []string // row labels: snapshot names, or bucket ranges
}

// Components returns the selected component names in column order.
func (r *Result) Components() []string {
	out := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		out[i] = col.Component
	}
	return out
}

// Rows returns the number of rows: the snapshot count before aggregation,
// the bucket count after.
func (r *Result) Rows() int {
	return len(r.labels)
}

// RowLabels returns the row labels: snapshot names, or "first..last" ranges
// after bucket aggregation.
func (r *Result) RowLabels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Row returns one row across all columns, in column order.
func (r *Result) Row(i int) []float64 {
	out := make([]float64, len(r.Columns))
	for j, col := range r.Columns {
		out[j] = col.Values[i]
	}
	return out
}

// Empty reports whether every value across all rows and columns is exactly
// zero. Callers use this to skip degenerate traces.
func (r *Result) Empty() bool {
	for _, col := range r.Columns {
		for _, v := range col.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// ToTable materializes the result under a name in the owning entry's table
// registry, silently overwriting an existing table of the same name. Results
// constructed detached from an entry cannot be materialized.
func (r *Result) ToTable(name string) error {
	if r.entry == nil {
		return ErrNoOwningEntry
	}
	r.entry.Materialize(r, name)
	return nil
}

// newResult builds a selection result from resolved series, applying sign
// and optional bucket aggregation. Source series are copied, never mutated.
func newResult(e *Entry, components []string, mode string, cfg selectConfig) (*Result, error) {
	n := len(e.snapshots)
	if cfg.aggregated && (cfg.buckets < 1 || cfg.buckets > n) {
		return nil, &AggregationError{Buckets: cfg.buckets, Snapshots: n}
	}

	columns := make([]Column, 0, len(components))
	for _, component := range components {
		if !e.meta.HasComponent(component) {
			return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
		}
		source, ok := e.store.get(component, mode)
		if !ok {
			return nil, &MissingSeriesError{Component: component, Mode: mode}
		}
		values := make([]float64, n)
		for i, v := range source {
			values[i] = v * cfg.sign
		}
		columns = append(columns, Column{Component: component, Values: values})
	}

	r := &Result{
		entry:   e,
		Mode:    mode,
		Sign:    cfg.sign,
		Columns: columns,
		labels:  e.snapshots,
	}
	if cfg.aggregated {
		r.aggregate(cfg.buckets)
	}
	return r, nil
}

// aggregate folds the snapshot axis into b contiguous buckets, summing per
// column. Bucket sizes differ by at most one; longer buckets come first.
func (r *Result) aggregate(b int) {
	n := len(r.labels)
	base := n / b
	rem := n % b

	bounds := make([][2]int, b) // [start, end) per bucket
	start := 0
	for i := 0; i < b; i++ {
		size := base
		if i < rem {
			size++
		}
		bounds[i] = [2]int{start, start + size}
		start += size
	}

	labels := make([]string, b)
	for i, bd := range bounds {
		first, last := r.labels[bd[0]], r.labels[bd[1]-1]
		if first == last {
			labels[i] = first
		} else {
			labels[i] = first + ".." + last
		}
	}

	for ci := range r.Columns {
		summed := make([]float64, b)
		for i, bd := range bounds {
			for _, v := range r.Columns[ci].Values[bd[0]:bd[1]] {
				summed[i] += v
			}
		}
		r.Columns[ci].Values = summed
	}

	r.Buckets = b
	r.labels = labels
}
