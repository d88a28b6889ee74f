package measure

import (
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram renders one distribution to a PNG.
func Histogram(values []float64, title, xlabel, path string, bins int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if bins < 1 {
		bins = 10
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(7*vg.Inch, 4*vg.Inch, path)
}

// WriteHistograms renders the four standard distribution plots for a
// report into dir.
func WriteHistograms(rep Report, dir string) error {
	var deg, clust, prv, and []float64
	maxDeg := 0
	for _, n := range rep.Nodes {
		deg = append(deg, float64(n.Degree))
		clust = append(clust, n.Clustering)
		prv = append(prv, n.PageRank)
		and = append(and, n.AvgNeighborDegree)
		if n.Degree > maxDeg {
			maxDeg = n.Degree
		}
	}
	degBins := int(math.Sqrt(float64(maxDeg)))
	if degBins < 10 {
		degBins = 10
	}
	if err := Histogram(deg, "Degree Distribution", "Degree (# of friends)", filepath.Join(dir, "degree_hist.png"), degBins); err != nil {
		return err
	}
	if err := Histogram(clust, "Clustering Coefficient Distribution", "Clustering coefficient", filepath.Join(dir, "clustering_hist.png"), 10); err != nil {
		return err
	}
	if err := Histogram(prv, "PageRank Distribution", "PageRank score", filepath.Join(dir, "pagerank_hist.png"), 20); err != nil {
		return err
	}
	return Histogram(and, "Average Neighbor Degree (Local Friends)", "Avg # of friends of my friends", filepath.Join(dir, "avg_neighbor_degree_hist.png"), 20)
}
