package diagram

// VertexType distinguishes the drawable component kinds. Connections are
// edges, not vertices.
type VertexType string

const (
	TypeProfile VertexType = "Profile"
	TypeNode    VertexType = "Node"
	TypeUnit    VertexType = "Unit"
)

// Vertex is one drawable component with its computed size and position.
type Vertex struct {
	ID     string
	Type   VertexType
	Width  int
	Height int
	X, Y   int

	in  []*Vertex
	out []*Vertex
}

// Edge is a directed link between two vertices. Label is set for explicit
// grid connections, empty for implicit component-node attachments.
type Edge struct {
	Source, Target *Vertex
	Label          string
}

// Graph is the topology extracted from an entry's metadata.
type Graph struct {
	vertices map[string]*Vertex
	order    []string // insertion order, keeps output deterministic
	edges    []*Edge
}

func newGraph() *Graph {
	return &Graph{vertices: make(map[string]*Vertex)}
}

func (g *Graph) addVertex(id string, vtype VertexType) *Vertex {
	v := &Vertex{ID: id, Type: vtype}
	switch vtype {
	case TypeUnit:
		v.Width, v.Height = 120, 60
	case TypeProfile:
		v.Width, v.Height = 80, 80
	case TypeNode:
		v.Width, v.Height = 80, 40
	}
	g.vertices[id] = v
	g.order = append(g.order, id)
	return v
}

func (g *Graph) addEdge(source, target, label string) {
	src, ok := g.vertices[source]
	if !ok {
		return
	}
	tgt, ok := g.vertices[target]
	if !ok {
		return
	}
	g.edges = append(g.edges, &Edge{Source: src, Target: tgt, Label: label})
	src.out = append(src.out, tgt)
	tgt.in = append(tgt.in, src)
}

// Vertices returns the graph's vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id])
	}
	return out
}

// Edges returns the graph's edges.
func (g *Graph) Edges() []*Edge { return g.edges }

const (
	xSpacing = 160
	ySpacing = 120
)

// layout assigns positions by BFS layering from the roots, then nudges unit
// neighbors so inputs sit left of a unit and outputs right of it.
func (g *Graph) layout() {
	// Node width grows with degree so edge endpoints do not pile up.
	for _, v := range g.vertices {
		if v.Type == TypeNode {
			degree := len(v.in) + len(v.out)
			if w := 20 + 10*degree; w > 40 {
				v.Width = w
			} else {
				v.Width = 40
			}
		}
	}

	type queued struct {
		v     *Vertex
		depth int
	}
	visited := make(map[string]bool)
	var queue []queued
	for _, id := range g.order {
		v := g.vertices[id]
		if len(v.in) == 0 {
			queue = append(queue, queued{v, 0})
			visited[v.ID] = true
		}
	}
	// Cyclic topologies have no roots; fall back to the first vertex.
	if len(queue) == 0 && len(g.order) > 0 {
		v := g.vertices[g.order[0]]
		queue = append(queue, queued{v, 0})
		visited[v.ID] = true
	}

	layerY := make(map[int]int)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		cur.v.X = cur.depth * xSpacing
		cur.v.Y = layerY[cur.depth] + (80-cur.v.Height)/2
		layerY[cur.depth] += ySpacing

		for _, next := range cur.v.out {
			if !visited[next.ID] {
				visited[next.ID] = true
				queue = append(queue, queued{next, cur.depth + 1})
			}
		}
	}

	for _, v := range g.vertices {
		if v.Type != TypeUnit {
			continue
		}
		for _, out := range v.out {
			if out.X <= v.X {
				out.X = v.X + v.Width + xSpacing
			}
		}
		for _, in := range v.in {
			if in.X >= v.X {
				in.X = v.X - xSpacing - in.Width
			}
		}
	}
}
