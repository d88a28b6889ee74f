package socialgraph

import (
	"testing"

	"fedilens/internal/model"
)

func strp(s string) *string { return &s }

func TestBuildDiffusionEdges(t *testing.T) {
	posts := []model.Post{
		{ID: "1"},
		{ID: "2", InReplyToID: strp("1")},
		{ID: "3", ReblogOfID: strp("9")}, // parent outside the set
	}
	g := BuildDiffusion(posts)
	if !g.Directed {
		t.Fatal("diffusion graph must be directed")
	}
	if g.NumNodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NumNodes())
	}
	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Source != "1" || e.Target != "2" || e.Attrs["kind"] != KindReply {
		t.Fatalf("unexpected edge %+v", e)
	}
}

func TestBuildDiffusionNoDanglingEndpoints(t *testing.T) {
	posts := []model.Post{
		{ID: "a", InReplyToID: strp("missing")},
		{ID: "b", ReblogOfID: strp("gone")},
	}
	g := BuildDiffusion(posts)
	if g.NumEdges() != 0 {
		t.Fatalf("expected no edges, got %d", g.NumEdges())
	}
	known := map[string]bool{"a": true, "b": true}
	for _, e := range g.Edges() {
		if !known[e.Source] || !known[e.Target] {
			t.Fatalf("edge with endpoint outside post set: %+v", e)
		}
	}
}

func TestBuildDiffusionBothParentsPreserved(t *testing.T) {
	posts := []model.Post{
		{ID: "p1"},
		{ID: "p2"},
		{ID: "c", InReplyToID: strp("p1"), ReblogOfID: strp("p2")},
	}
	g := BuildDiffusion(posts)
	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("expected both reply and boost edges, got %d", len(edges))
	}
	kinds := map[string]string{}
	for _, e := range edges {
		kinds[e.Attrs["kind"].(string)] = e.Source
	}
	if kinds[KindReply] != "p1" || kinds[KindBoost] != "p2" {
		t.Fatalf("unexpected edges %v", kinds)
	}
}

func TestBuildDiffusionNodeAttrs(t *testing.T) {
	n := 4
	lang := "en"
	posts := []model.Post{{
		ID:           "1",
		Account:      model.PostAuthor{Acct: "alice@x.com"},
		Language:     &lang,
		RepliesCount: &n,
		Tags:         []string{"ai", "llm"},
	}}
	g := BuildDiffusion(posts)
	attrs := g.NodeAttrs("1")
	if attrs["author"] != "alice@x.com" || attrs["language"] != "en" {
		t.Fatalf("unexpected attrs %v", attrs)
	}
	if attrs["replies"] != 4 {
		t.Fatalf("expected replies 4, got %v", attrs["replies"])
	}
	if attrs["tags"] != "ai,llm" {
		t.Fatalf("expected joined tags, got %v", attrs["tags"])
	}
	if attrs["reblogs"] != nil {
		t.Fatal("absent count must stay nil until sanitization drops it")
	}
}
