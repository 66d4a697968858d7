// Package trace converts selection results into renderer-agnostic traces.
// A trace is a sequence of (x, y) pairs plus a display name; any axis-domain
// restriction happens here at render time and never touches the underlying
// selection result.
package trace

import (
	"fmt"

	"github.com/helios-lab/project-helios/internal/rdb"
)

// Kind names the visual style of a trace. Line kinds compose with modifiers,
// e.g. "line+markers" or "line+hv" for stepped lines.
type Kind string

const (
	KindBar         Kind = "bar"
	KindLine        Kind = "line"
	KindLineMarkers Kind = "line+markers"
	KindLineStepped Kind = "line+hv"
)

func (k Kind) valid() bool {
	switch k {
	case KindBar, KindLine, KindLineMarkers, KindLineStepped:
		return true
	}
	return false
}

// Trace is a single renderable data series.
type Trace struct {
	Name string    `json:"name"`
	Kind Kind      `json:"kind"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// FromResult converts a selection result into one trace per column, labeled
// by component name, with x labels taken from the result's row labels. The
// result's sign was already applied at selection time.
func FromResult(r *rdb.Result, kind Kind) ([]*Trace, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unsupported trace kind %q", kind)
	}

	labels := r.RowLabels()
	traces := make([]*Trace, 0, len(r.Columns))
	for _, col := range r.Columns {
		y := make([]float64, len(col.Values))
		copy(y, col.Values)
		traces = append(traces, &Trace{
			Name: col.Component,
			Kind: kind,
			X:    labels,
			Y:    y,
		})
	}
	return traces, nil
}

// Empty reports whether every y value is exactly zero. Callers skip empty
// traces instead of rendering flat lines.
func (t *Trace) Empty() bool {
	for _, v := range t.Y {
		if v != 0 {
			return false
		}
	}
	return true
}

// Slice restricts the trace to the given x labels, in the given order. This
// is a render-time view; the source trace stays intact. Unknown labels fail.
func (t *Trace) Slice(x []string) (*Trace, error) {
	index := make(map[string]int, len(t.X))
	for i, label := range t.X {
		index[label] = i
	}

	y := make([]float64, len(x))
	for i, label := range x {
		j, ok := index[label]
		if !ok {
			return nil, fmt.Errorf("label %q is not on the trace's axis", label)
		}
		y[i] = t.Y[j]
	}

	out := make([]string, len(x))
	copy(out, x)
	return &Trace{Name: t.Name, Kind: t.Kind, X: out, Y: y}, nil
}
