package measure

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteNodeMetricsCSV writes one row per node with its measures.
func WriteNodeMetricsCSV(rep Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"node_id", "acct", "domain", "degree", "clustering", "pagerank", "avg_neighbor_degree"}); err != nil {
		return err
	}
	for _, n := range rep.Nodes {
		row := []string{
			n.ID,
			n.Acct,
			n.Domain,
			strconv.Itoa(n.Degree),
			strconv.FormatFloat(n.Clustering, 'g', -1, 64),
			strconv.FormatFloat(n.PageRank, 'g', -1, 64),
			strconv.FormatFloat(n.AvgNeighborDegree, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummary writes the headline numbers and top-10 rankings.
func WriteSummary(rep Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "=== Friendship Network Summary ===\n")
	fmt.Fprintf(f, "Nodes: %d\nEdges: %d\n", rep.NodeCount, rep.EdgeCount)
	fmt.Fprintf(f, "Average degree (global): %.2f\n", rep.AvgDegree)
	fmt.Fprintf(f, "Connected components: %d (LCC size: %d)\n", rep.Components, rep.LCCSize)
	isoPct := 0.0
	if rep.NodeCount > 0 {
		isoPct = float64(rep.Isolates) / float64(rep.NodeCount) * 100
	}
	fmt.Fprintf(f, "Isolates: %d (%.1f%% of nodes)\n", rep.Isolates, isoPct)
	fmt.Fprintf(f, "Global clustering (transitivity): %.4f\n", rep.Transitivity)
	if rep.Diameter >= 0 {
		fmt.Fprintf(f, "Diameter (LCC): %d\n", rep.Diameter)
	} else {
		fmt.Fprintf(f, "Diameter (LCC): n/a\n")
	}
	fmt.Fprintf(f, "Mean of local avg-neighbor-degree: %.2f\n\n", rep.MeanAvgNeighborDegree)

	fmt.Fprintf(f, "Top-10 by degree:\n")
	for _, n := range TopBy(rep.Nodes, 10, func(n NodeMetrics) float64 { return float64(n.Degree) }) {
		fmt.Fprintf(f, "  %4d  %s\n", n.Degree, acctOr(n))
	}
	fmt.Fprintf(f, "\nTop-10 by PageRank:\n")
	for _, n := range TopBy(rep.Nodes, 10, func(n NodeMetrics) float64 { return n.PageRank }) {
		fmt.Fprintf(f, "  %.6f  %s\n", n.PageRank, acctOr(n))
	}
	return nil
}

func acctOr(n NodeMetrics) string {
	if n.Acct == "" {
		return "<no-acct>"
	}
	return n.Acct
}
