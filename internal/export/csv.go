package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"fedilens/internal/socialgraph"
)

// WriteCSVs writes a sanitized graph as flat node and edge tables under
// dir: <prefix>_nodes.csv and <prefix>_edges.csv. Headers are the
// alphabetically sorted union of attribute keys observed across the
// whole collection, so a node merely lacking an attribute gets an empty
// cell, never a missing column.
func WriteCSVs(g *socialgraph.Graph, dir, prefix string) (nodesPath, edgesPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	nodesPath = filepath.Join(dir, prefix+"_nodes.csv")
	edgesPath = filepath.Join(dir, prefix+"_edges.csv")

	if err := writeNodesCSV(g, nodesPath); err != nil {
		return "", "", err
	}
	if err := writeEdgesCSV(g, edgesPath); err != nil {
		return "", "", err
	}
	return nodesPath, edgesPath, nil
}

func writeNodesCSV(g *socialgraph.Graph, path string) error {
	keys := nodeAttrKeys(g)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"id"}, keys...)); err != nil {
		return err
	}
	for _, id := range g.Nodes() {
		attrs := g.NodeAttrs(id)
		row := make([]string, 0, 1+len(keys))
		row = append(row, id)
		for _, k := range keys {
			row = append(row, FormatCell(attrs[k]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeEdgesCSV(g *socialgraph.Graph, path string) error {
	keys := edgeAttrKeys(g)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"source", "target"}, keys...)); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		row := make([]string, 0, 2+len(keys))
		row = append(row, e.Source, e.Target)
		for _, k := range keys {
			row = append(row, FormatCell(e.Attrs[k]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// nodeAttrKeys scans every node before any row is written.
func nodeAttrKeys(g *socialgraph.Graph) []string {
	set := make(map[string]struct{})
	for _, id := range g.Nodes() {
		for k := range g.NodeAttrs(id) {
			set[k] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func edgeAttrKeys(g *socialgraph.Graph) []string {
	set := make(map[string]struct{})
	for _, e := range g.Edges() {
		for k := range e.Attrs {
			set[k] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FormatCell renders a sanitized attribute value for tabular output;
// missing values render empty.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
