package socialgraph

import (
	"reflect"
	"testing"
)

func TestSanitizeDropsNilAndCoerces(t *testing.T) {
	g := New("t", false)
	g.AddNode("n", map[string]any{
		"gone":  nil,
		"tags":  []string{"a", "b"},
		"extra": map[string]string{"k": "v"},
		"count": 3,
		"name":  "x",
	})
	Sanitize(g)

	attrs := g.NodeAttrs("n")
	if _, ok := attrs["gone"]; ok {
		t.Fatal("nil attribute survived sanitization")
	}
	if attrs["tags"] != "a,b" {
		t.Fatalf("expected joined slice, got %v", attrs["tags"])
	}
	if attrs["extra"] != `{"k":"v"}` {
		t.Fatalf("expected JSON map, got %v", attrs["extra"])
	}
	if attrs["count"] != 3 || attrs["name"] != "x" {
		t.Fatalf("scalars must pass through, got %v", attrs)
	}
}

func TestSanitizeEdgeAttrs(t *testing.T) {
	g := New("t", true)
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddEdge("a", "b", map[string]any{"why": []string{"x"}, "skip": nil})
	Sanitize(g)

	e := g.Edges()[0]
	if e.Attrs["why"] != "x" {
		t.Fatalf("expected coerced edge attr, got %v", e.Attrs["why"])
	}
	if _, ok := e.Attrs["skip"]; ok {
		t.Fatal("nil edge attribute survived")
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	g := New("t", false)
	g.AddNode("n", map[string]any{
		"tags": []string{"a", "b"},
		"meta": map[string]int{"x": 1},
		"num":  7,
	})
	Sanitize(g)
	first := make(map[string]any, len(g.NodeAttrs("n")))
	for k, v := range g.NodeAttrs("n") {
		first[k] = v
	}
	Sanitize(g)
	if !reflect.DeepEqual(first, g.NodeAttrs("n")) {
		t.Fatalf("second pass changed attrs: %v vs %v", first, g.NodeAttrs("n"))
	}
}

func TestSanitizeValuePointer(t *testing.T) {
	s := "hello"
	v, ok := SanitizeValue(&s)
	if !ok || v != "hello" {
		t.Fatalf("expected deref to hello, got %v %v", v, ok)
	}
	var nilp *string
	if _, ok := SanitizeValue(nilp); ok {
		t.Fatal("nil pointer must be dropped")
	}
}
