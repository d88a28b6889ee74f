package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fedilens/internal/socialgraph"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCSVsUnionHeader(t *testing.T) {
	g := socialgraph.New("t", false)
	g.AddNode("1", map[string]any{"acct": "a@x.com", "followers": 10})
	g.AddNode("2", map[string]any{"acct": "b@x.com", "domain": "x.com"})
	g.AddEdge("1", "2", map[string]any{"reason": "follow"})

	dir := t.TempDir()
	nodesPath, edgesPath, err := WriteCSVs(g, dir, "friendship")
	if err != nil {
		t.Fatalf("WriteCSVs: %v", err)
	}
	if filepath.Base(nodesPath) != "friendship_nodes.csv" {
		t.Fatalf("unexpected nodes path %s", nodesPath)
	}

	rows := readCSV(t, nodesPath)
	wantHeader := []string{"id", "acct", "domain", "followers"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	// Node 1 lacks domain, node 2 lacks followers: empty cells, same width.
	if !reflect.DeepEqual(rows[1], []string{"1", "a@x.com", "", "10"}) {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if !reflect.DeepEqual(rows[2], []string{"2", "b@x.com", "x.com", ""}) {
		t.Fatalf("row 2 = %v", rows[2])
	}

	erows := readCSV(t, edgesPath)
	if !reflect.DeepEqual(erows[0], []string{"source", "target", "reason"}) {
		t.Fatalf("edge header = %v", erows[0])
	}
	if !reflect.DeepEqual(erows[1], []string{"1", "2", "follow"}) {
		t.Fatalf("edge row = %v", erows[1])
	}
}

func TestWriteCSVsEmptyGraph(t *testing.T) {
	g := socialgraph.New("empty", true)
	nodesPath, edgesPath, err := WriteCSVs(g, t.TempDir(), "empty")
	if err != nil {
		t.Fatalf("WriteCSVs: %v", err)
	}
	if rows := readCSV(t, nodesPath); len(rows) != 1 || rows[0][0] != "id" {
		t.Fatalf("nodes = %v", rows)
	}
	if rows := readCSV(t, edgesPath); len(rows) != 1 {
		t.Fatalf("edges = %v", rows)
	}
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{42, "42"},
		{int64(7), "7"},
		{0.5, "0.5"},
	}
	for _, c := range cases {
		if got := FormatCell(c.in); got != c.want {
			t.Fatalf("FormatCell(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
