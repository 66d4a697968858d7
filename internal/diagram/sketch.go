// Package diagram renders an entry's topology as a static draw.io sketch.
// It consumes only the entry's metadata index: the component set plus the
// topology-relevant attributes (type, carrier, node, direction).
package diagram

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/helios-lab/project-helios/internal/rdb"
)

// Carrier stroke colors; unknown carriers get the magenta fallback so they
// stand out in the sketch instead of disappearing.
var carrierColors = map[string]string{
	"electricity": "#4c00ff",
	"heat":        "#7a1800",
}

const (
	fallbackColor   = "#ff00ff"
	unitStrokeColor = "#505050"
)

func colorFor(carrier string) string {
	if c, ok := carrierColors[carrier]; ok {
		return c
	}
	return fallbackColor
}

// Sketch is a laid-out topology ready to be written as draw.io XML.
type Sketch struct {
	Name  string
	graph *Graph
	// carrier per component, for stroke colors
	carriers map[string]string
	states   map[string]bool // nodes with storage state get a fill
}

// FromEntry builds a sketch from an entry's metadata. Components are mapped
// by their "type" attribute: Profile, Node and Unit become vertices,
// Connection becomes a labeled edge between its node_from/node_to, and
// profiles/units attach to their "node" following the "direction" attribute.
func FromEntry(e *rdb.Entry) (*Sketch, error) {
	s := &Sketch{
		Name:     e.Name(),
		graph:    newGraph(),
		carriers: make(map[string]string),
		states:   make(map[string]bool),
	}

	type pending struct {
		component string
		attrs     map[string]string
	}
	var connections []pending

	for _, component := range e.Metadata().Components() {
		attrs, err := e.Metadata().AttributesOf(component)
		if err != nil {
			return nil, err
		}
		s.carriers[component] = attrs["carrier"]

		switch attrs["type"] {
		case string(TypeProfile):
			s.graph.addVertex(component, TypeProfile)
		case string(TypeNode):
			s.graph.addVertex(component, TypeNode)
			if attrs["has_state"] == "true" {
				s.states[component] = true
			}
		case string(TypeUnit):
			s.graph.addVertex(component, TypeUnit)
		case "Connection":
			connections = append(connections, pending{component, attrs})
		default:
			return nil, fmt.Errorf("component %q has unknown type %q", component, attrs["type"])
		}
	}

	// Second pass: attachments, once every vertex exists.
	for _, component := range e.Metadata().Components() {
		attrs, _ := e.Metadata().AttributesOf(component)
		switch attrs["type"] {
		case string(TypeProfile), string(TypeUnit):
			if node := attrs["node"]; node != "" {
				if attrs["direction"] == "in" {
					s.graph.addEdge(node, component, "")
				} else {
					s.graph.addEdge(component, node, "")
				}
			}
			if in := attrs["node_in"]; in != "" {
				s.graph.addEdge(in, component, "")
			}
			if out := attrs["node_out"]; out != "" {
				s.graph.addEdge(component, out, "")
			}
		}
	}
	for _, conn := range connections {
		s.graph.addEdge(conn.attrs["node_from"], conn.attrs["node_to"], conn.component)
	}

	s.graph.layout()
	return s, nil
}

// draw.io mxGraph document shapes.

type mxFile struct {
	XMLName xml.Name  `xml:"mxfile"`
	Host    string    `xml:"host,attr"`
	Diagram mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	Name  string  `xml:"name,attr"`
	Model mxModel `xml:"mxGraphModel"`
}

type mxModel struct {
	Root mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        int    `xml:"x,attr,omitempty"`
	Y        int    `xml:"y,attr,omitempty"`
	Width    int    `xml:"width,attr,omitempty"`
	Height   int    `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// WriteTo writes the sketch as a draw.io XML document.
func (s *Sketch) WriteTo(w io.Writer) error {
	cells := []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}

	for _, v := range s.graph.Vertices() {
		cells = append(cells, mxCell{
			ID:     v.ID,
			Value:  v.ID,
			Style:  s.vertexStyle(v),
			Parent: "1",
			Vertex: "1",
			Geometry: &mxGeometry{
				X: v.X, Y: v.Y,
				Width: v.Width, Height: v.Height,
				As: "geometry",
			},
		})
	}

	for i, edge := range s.graph.Edges() {
		cells = append(cells, mxCell{
			ID:       fmt.Sprintf("edge-%d", i),
			Value:    edge.Label,
			Style:    s.edgeStyle(edge),
			Parent:   "1",
			Edge:     "1",
			Source:   edge.Source.ID,
			Target:   edge.Target.ID,
			Geometry: &mxGeometry{Relative: "1", As: "geometry"},
		})
	}

	doc := mxFile{
		Host: "helios",
		Diagram: mxDiagram{
			Name:  s.Name,
			Model: mxModel{Root: mxRoot{Cells: cells}},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

func (s *Sketch) vertexStyle(v *Vertex) string {
	color := colorFor(s.carriers[v.ID])
	switch v.Type {
	case TypeProfile:
		return fmt.Sprintf("rhombus;whiteSpace=wrap;html=1;strokeColor=%s;", color)
	case TypeNode:
		style := fmt.Sprintf("rounded=1;whiteSpace=wrap;html=1;arcSize=50;strokeColor=%s;", color)
		if s.states[v.ID] {
			style += fmt.Sprintf("fillColor=%s;fillOpacity=15;", color)
		}
		return style
	case TypeUnit:
		return fmt.Sprintf("shape=hexagon;perimeter=hexagonPerimeter2;whiteSpace=wrap;html=1;fixedSize=1;strokeColor=%s;", unitStrokeColor)
	}
	return ""
}

func (s *Sketch) edgeStyle(e *Edge) string {
	// Edges pick up the color of whichever endpoint is not a unit.
	color := colorFor(s.carriers[e.Target.ID])
	if e.Target.Type == TypeUnit {
		color = colorFor(s.carriers[e.Source.ID])
	}
	return fmt.Sprintf("rounded=1;jumpStyle=gap;strokeWidth=1.5;strokeColor=%s;", color)
}
