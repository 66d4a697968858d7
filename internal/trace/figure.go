package trace

import "fmt"

// Default color palette applied to figure series in order.
var defaultColors = []string{
	"#10798E", "#C1DEC1", "#E18B1A", "#EA00E3", "#E7DA59",
	"#F1A8BD", "#6A7C59", "#8C0993", "#C1E0A4", "#8383FD",
}

// Figure collects traces and produces a render-ready chart description for
// whatever drawing backend the caller uses. The figure itself never draws.
type Figure struct {
	Title  string
	traces []*Trace
}

// NewFigure creates an empty figure.
func NewFigure(title string) *Figure {
	return &Figure{Title: title}
}

// Add appends a trace to the figure.
func (f *Figure) Add(t *Trace) {
	f.traces = append(f.traces, t)
}

// ChartConfig is the renderer-agnostic chart description handed to drawing
// backends and the inspection UI.
type ChartConfig struct {
	Title      string   `json:"title"`
	Series     []Series `json:"series"`
	Colors     []string `json:"colors"`
	ShowLegend bool     `json:"showLegend"`
}

// Series is one trace flattened into labeled points.
type Series struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Point is a single (x, y) pair.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Config renders the figure into a ChartConfig. Traces must share a common
// x axis; mismatched axes fail rather than silently misalign.
func (f *Figure) Config() (*ChartConfig, error) {
	if len(f.traces) == 0 {
		return nil, fmt.Errorf("figure %q has no traces", f.Title)
	}

	axis := f.traces[0].X
	for _, t := range f.traces[1:] {
		if len(t.X) != len(axis) {
			return nil, fmt.Errorf("trace %q has %d points, expected %d", t.Name, len(t.X), len(axis))
		}
		for i, label := range t.X {
			if label != axis[i] {
				return nil, fmt.Errorf("trace %q axis diverges at %q", t.Name, label)
			}
		}
	}

	cfg := &ChartConfig{
		Title:      f.Title,
		ShowLegend: true,
	}
	for i, t := range f.traces {
		color := defaultColors[i%len(defaultColors)]
		points := make([]Point, len(t.X))
		for j := range t.X {
			points[j] = Point{Label: t.X[j], Value: t.Y[j]}
		}
		cfg.Series = append(cfg.Series, Series{
			Name:   t.Name,
			Kind:   t.Kind,
			Color:  color,
			Points: points,
		})
		cfg.Colors = append(cfg.Colors, color)
	}
	return cfg, nil
}
