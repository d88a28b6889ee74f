package measure

import (
	"math"
	"testing"

	"fedilens/internal/socialgraph"
)

func triangleWithIsolate() *socialgraph.Graph {
	g := socialgraph.New("Friendship", false)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, map[string]any{"acct": id + "@x.com", "domain": "x.com"})
	}
	g.AddEdge("a", "b", nil)
	g.AddEdge("b", "c", nil)
	g.AddEdge("a", "c", nil)
	return g
}

func TestComputeTriangle(t *testing.T) {
	rep := Compute(triangleWithIsolate())

	if rep.NodeCount != 4 || rep.EdgeCount != 3 {
		t.Fatalf("counts = %d nodes %d edges", rep.NodeCount, rep.EdgeCount)
	}
	if rep.Components != 2 {
		t.Fatalf("components = %d", rep.Components)
	}
	if rep.LCCSize != 3 {
		t.Fatalf("lcc = %d", rep.LCCSize)
	}
	if rep.Isolates != 1 {
		t.Fatalf("isolates = %d", rep.Isolates)
	}
	if rep.Diameter != 1 {
		t.Fatalf("diameter = %d", rep.Diameter)
	}
	if math.Abs(rep.Transitivity-1.0) > 1e-9 {
		t.Fatalf("transitivity = %f", rep.Transitivity)
	}

	byID := map[string]NodeMetrics{}
	for _, n := range rep.Nodes {
		byID[n.ID] = n
	}
	for _, id := range []string{"a", "b", "c"} {
		n := byID[id]
		if n.Degree != 2 {
			t.Fatalf("%s degree = %d", id, n.Degree)
		}
		if math.Abs(n.Clustering-1.0) > 1e-9 {
			t.Fatalf("%s clustering = %f", id, n.Clustering)
		}
		if math.Abs(n.AvgNeighborDegree-2.0) > 1e-9 {
			t.Fatalf("%s avg neighbor degree = %f", id, n.AvgNeighborDegree)
		}
		if n.PageRank <= 0 {
			t.Fatalf("%s pagerank = %f", id, n.PageRank)
		}
		if n.Acct != id+"@x.com" || n.Domain != "x.com" {
			t.Fatalf("%s attrs not carried: %+v", id, n)
		}
	}
	d := byID["d"]
	if d.Degree != 0 || d.Clustering != 0 || d.AvgNeighborDegree != 0 {
		t.Fatalf("isolate metrics = %+v", d)
	}
}

func TestComputePathDiameter(t *testing.T) {
	g := socialgraph.New("Friendship", false)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, nil)
	}
	g.AddEdge("a", "b", nil)
	g.AddEdge("b", "c", nil)
	g.AddEdge("c", "d", nil)

	rep := Compute(g)
	if rep.Diameter != 3 {
		t.Fatalf("path diameter = %d", rep.Diameter)
	}
	if rep.Transitivity != 0 {
		t.Fatalf("transitivity = %f", rep.Transitivity)
	}
	if math.Abs(rep.AvgDegree-1.5) > 1e-9 {
		t.Fatalf("avg degree = %f", rep.AvgDegree)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	rep := Compute(socialgraph.New("Friendship", false))
	if rep.NodeCount != 0 || rep.Components != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Diameter != -1 {
		t.Fatalf("diameter on empty graph = %d", rep.Diameter)
	}
}

func TestTopBy(t *testing.T) {
	nodes := []NodeMetrics{
		{ID: "a", Degree: 1},
		{ID: "b", Degree: 3},
		{ID: "c", Degree: 2},
		{ID: "d", Degree: 3},
	}
	top := TopBy(nodes, 2, func(n NodeMetrics) float64 { return float64(n.Degree) })
	if len(top) != 2 || top[0].ID != "b" || top[1].ID != "d" {
		t.Fatalf("top = %+v", top)
	}
	if got := TopBy(nodes, 10, func(n NodeMetrics) float64 { return float64(n.Degree) }); len(got) != 4 {
		t.Fatalf("oversized k returned %d", len(got))
	}
}
