package socialgraph

// Edge is one graph edge with an attribute bag.
type Edge struct {
	Source string
	Target string
	Attrs  map[string]any
}

// Graph is a small attribute graph assembled from crawled records and
// handed to the exporter and the measure stage. Node insertion order is
// preserved; metric algorithms live elsewhere.
type Graph struct {
	Name     string
	Directed bool

	nodes []string
	attrs map[string]map[string]any
	edges []Edge
}

func New(name string, directed bool) *Graph {
	return &Graph{Name: name, Directed: directed, attrs: make(map[string]map[string]any)}
}

// AddNode inserts a node with its attributes. Re-adding an existing id
// keeps the first attribute bag.
func (g *Graph) AddNode(id string, attrs map[string]any) {
	if id == "" {
		return
	}
	if _, ok := g.attrs[id]; ok {
		return
	}
	if attrs == nil {
		attrs = make(map[string]any)
	}
	g.attrs[id] = attrs
	g.nodes = append(g.nodes, id)
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.attrs[id]
	return ok
}

// AddEdge appends an edge between two existing nodes. Edges referencing
// unknown nodes are ignored.
func (g *Graph) AddEdge(src, dst string, attrs map[string]any) {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return
	}
	if attrs == nil {
		attrs = make(map[string]any)
	}
	g.edges = append(g.edges, Edge{Source: src, Target: dst, Attrs: attrs})
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeAttrs returns the attribute bag for id, or nil.
func (g *Graph) NodeAttrs(id string) map[string]any { return g.attrs[id] }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) NumNodes() int { return len(g.nodes) }
func (g *Graph) NumEdges() int { return len(g.edges) }
