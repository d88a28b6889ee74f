package measure

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteNodeMetricsCSV(t *testing.T) {
	rep := Compute(triangleWithIsolate())
	path := filepath.Join(t.TempDir(), "node_metrics.csv")
	if err := WriteNodeMetricsCSV(rep, path); err != nil {
		t.Fatalf("WriteNodeMetricsCSV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "node_id" || rows[0][5] != "pagerank" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "a" || rows[1][3] != "2" || rows[1][4] != "1" {
		t.Fatalf("row a = %v", rows[1])
	}
}

func TestWriteSummary(t *testing.T) {
	rep := Compute(triangleWithIsolate())
	path := filepath.Join(t.TempDir(), "summary.txt")
	if err := WriteSummary(rep, path); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{
		"Nodes: 4",
		"Edges: 3",
		"Connected components: 2 (LCC size: 3)",
		"Isolates: 1 (25.0% of nodes)",
		"Global clustering (transitivity): 1.0000",
		"Diameter (LCC): 1",
		"Top-10 by degree:",
		"Top-10 by PageRank:",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestWriteSummaryUndefinedDiameter(t *testing.T) {
	rep := Report{Diameter: -1}
	path := filepath.Join(t.TempDir(), "summary.txt")
	if err := WriteSummary(rep, path); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "Diameter (LCC): n/a") {
		t.Fatalf("summary = %s", b)
	}
}
