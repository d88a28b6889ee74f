package measure

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"fedilens/internal/socialgraph"
)

// NodeMetrics holds the per-node measures for one account.
type NodeMetrics struct {
	ID                string
	Acct              string
	Domain            string
	Degree            int
	Clustering        float64
	PageRank          float64
	AvgNeighborDegree float64
}

// Report is the full measure output for one friendship graph.
type Report struct {
	Nodes []NodeMetrics

	NodeCount  int
	EdgeCount  int
	AvgDegree  float64
	Components int
	LCCSize    int
	Isolates   int
	// Global clustering coefficient
	Transitivity float64
	// Diameter of the largest connected component; -1 when undefined
	Diameter              int
	MeanAvgNeighborDegree float64
}

// Compute runs the network measures over an undirected friendship
// graph: degree, local clustering, PageRank, average neighbor degree,
// transitivity, connected components, and the diameter of the largest
// component. PageRank runs on a symmetric directed mirror, which on an
// undirected graph matches the usual definition.
func Compute(g *socialgraph.Graph) Report {
	ids := g.Nodes()
	if len(ids) == 0 {
		return Report{Diameter: -1}
	}
	index := make(map[string]int64, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
	}

	und := simple.NewUndirectedGraph()
	for i := range ids {
		und.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges() {
		u, uok := index[e.Source]
		v, vok := index[e.Target]
		if !uok || !vok || u == v {
			continue
		}
		und.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	}

	dir := simple.NewDirectedGraph()
	for i := range ids {
		dir.AddNode(simple.Node(int64(i)))
	}
	edgeCount := 0
	edges := und.Edges()
	for edges.Next() {
		e := edges.Edge()
		edgeCount++
		dir.SetEdge(simple.Edge{F: e.From(), T: e.To()})
		dir.SetEdge(simple.Edge{F: e.To(), T: e.From()})
	}

	pr := network.PageRank(dir, 0.85, 1e-6)

	rep := Report{
		NodeCount: len(ids),
		EdgeCount: edgeCount,
		Diameter:  -1,
	}
	if rep.NodeCount > 0 {
		rep.AvgDegree = 2 * float64(edgeCount) / float64(rep.NodeCount)
	}

	var closedSum, triadSum float64
	var andTotal float64
	for i, id := range ids {
		uid := int64(i)
		deg := und.From(uid).Len()
		clust, closed, triads := localClustering(und, uid)
		closedSum += closed
		triadSum += triads
		nd := NodeMetrics{
			ID:                id,
			Degree:            deg,
			Clustering:        clust,
			PageRank:          pr[uid],
			AvgNeighborDegree: avgNeighborDegree(und, uid),
		}
		if attrs := g.NodeAttrs(id); attrs != nil {
			nd.Acct, _ = attrs["acct"].(string)
			nd.Domain, _ = attrs["domain"].(string)
		}
		if deg == 0 {
			rep.Isolates++
		}
		andTotal += nd.AvgNeighborDegree
		rep.Nodes = append(rep.Nodes, nd)
	}
	if triadSum > 0 {
		rep.Transitivity = closedSum / triadSum
	}
	if rep.NodeCount > 0 {
		rep.MeanAvgNeighborDegree = andTotal / float64(rep.NodeCount)
	}

	comps := topo.ConnectedComponents(und)
	rep.Components = len(comps)
	var lcc []graph.Node
	for _, c := range comps {
		if len(c) > len(lcc) {
			lcc = c
		}
	}
	rep.LCCSize = len(lcc)
	if len(lcc) >= 2 {
		rep.Diameter = componentDiameter(und, lcc)
	} else if len(lcc) == 1 {
		rep.Diameter = 0
	}

	return rep
}

// localClustering returns a node's clustering coefficient plus its
// closed and total triplet counts for the global transitivity sum.
func localClustering(und *simple.UndirectedGraph, uid int64) (coeff, closed, triads float64) {
	var neighbors []int64
	it := und.From(uid)
	for it.Next() {
		neighbors = append(neighbors, it.Node().ID())
	}
	k := len(neighbors)
	if k < 2 {
		return 0, 0, 0
	}
	links := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if und.HasEdgeBetween(neighbors[i], neighbors[j]) {
				links++
			}
		}
	}
	triads = float64(k*(k-1)) / 2
	closed = float64(links)
	return closed / triads, closed, triads
}

func avgNeighborDegree(und *simple.UndirectedGraph, uid int64) float64 {
	it := und.From(uid)
	n, total := 0, 0
	for it.Next() {
		total += und.From(it.Node().ID()).Len()
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// componentDiameter is the longest shortest path within one component,
// in hops.
func componentDiameter(und *simple.UndirectedGraph, comp []graph.Node) int {
	all := path.DijkstraAllPaths(und)
	max := 0.0
	for i := 0; i < len(comp); i++ {
		for j := i + 1; j < len(comp); j++ {
			w := all.Weight(comp[i].ID(), comp[j].ID())
			if w > max {
				max = w
			}
		}
	}
	return int(max)
}

// TopBy returns the k highest-scoring nodes under score, ties broken by
// node order.
func TopBy(nodes []NodeMetrics, k int, score func(NodeMetrics) float64) []NodeMetrics {
	out := make([]NodeMetrics, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) > score(out[j]) })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
