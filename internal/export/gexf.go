package export

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"

	"fedilens/internal/socialgraph"
)

const gexfNS = "http://www.gexf.net/1.2draft"

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string        `xml:"defaultedgetype,attr"`
	Attributes      []gexfAttrSet `xml:"attributes"`
	Nodes           gexfNodes     `xml:"nodes"`
	Edges           gexfEdges     `xml:"edges"`
}

type gexfAttrSet struct {
	Class string     `xml:"class,attr"`
	Attrs []gexfAttr `xml:"attribute"`
}

type gexfAttr struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNodes struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID        string         `xml:"id,attr"`
	Label     string         `xml:"label,attr"`
	AttValues *gexfAttValues `xml:"attvalues,omitempty"`
}

type gexfEdges struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID        string         `xml:"id,attr"`
	Source    string         `xml:"source,attr"`
	Target    string         `xml:"target,attr"`
	AttValues *gexfAttValues `xml:"attvalues,omitempty"`
}

type gexfAttValues struct {
	Values []gexfAttValue `xml:"attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

// WriteGEXF serializes a sanitized graph to a GEXF 1.2 file, preserving
// all node and edge attributes and the directed/undirected flag.
func WriteGEXF(g *socialgraph.Graph, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	nodeKeys := nodeAttrKeys(g)
	edgeKeys := edgeAttrKeys(g)
	nodeTypes := inferNodeAttrTypes(g, nodeKeys)
	edgeTypes := inferEdgeAttrTypes(g, edgeKeys)

	doc := gexfDoc{XMLNS: gexfNS, Version: "1.2"}
	doc.Graph.DefaultEdgeType = "undirected"
	if g.Directed {
		doc.Graph.DefaultEdgeType = "directed"
	}
	doc.Graph.Attributes = []gexfAttrSet{
		attrSet("node", nodeKeys, nodeTypes),
		attrSet("edge", edgeKeys, edgeTypes),
	}

	nodeAttrID := indexOf(nodeKeys)
	for _, id := range g.Nodes() {
		n := gexfNode{ID: id, Label: id}
		n.AttValues = attValues(g.NodeAttrs(id), nodeKeys, nodeAttrID)
		doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, n)
	}

	edgeAttrID := indexOf(edgeKeys)
	for i, e := range g.Edges() {
		ge := gexfEdge{ID: strconv.Itoa(i), Source: e.Source, Target: e.Target}
		ge.AttValues = attValues(e.Attrs, edgeKeys, edgeAttrID)
		doc.Graph.Edges.Edges = append(doc.Graph.Edges.Edges, ge)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// ReadGEXF loads a GEXF file back into an attribute graph. Declared
// attribute types restore long, double, and boolean values; anything
// else comes back as a string.
func ReadGEXF(path string) (*socialgraph.Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc gexfDoc
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	g := socialgraph.New("", doc.Graph.DefaultEdgeType == "directed")

	nodeAttrs := declaredAttrs(doc.Graph.Attributes, "node")
	edgeAttrs := declaredAttrs(doc.Graph.Attributes, "edge")

	for _, n := range doc.Graph.Nodes.Nodes {
		g.AddNode(n.ID, decodeAttValues(n.AttValues, nodeAttrs))
	}
	for _, e := range doc.Graph.Edges.Edges {
		g.AddEdge(e.Source, e.Target, decodeAttValues(e.AttValues, edgeAttrs))
	}
	return g, nil
}

func attrSet(class string, keys []string, types map[string]string) gexfAttrSet {
	set := gexfAttrSet{Class: class}
	for i, k := range keys {
		set.Attrs = append(set.Attrs, gexfAttr{ID: strconv.Itoa(i), Title: k, Type: types[k]})
	}
	return set
}

func indexOf(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for i, k := range keys {
		out[k] = strconv.Itoa(i)
	}
	return out
}

func attValues(attrs map[string]any, keys []string, attrID map[string]string) *gexfAttValues {
	var vals []gexfAttValue
	for _, k := range keys {
		v, ok := attrs[k]
		if !ok || v == nil {
			continue
		}
		vals = append(vals, gexfAttValue{For: attrID[k], Value: FormatCell(v)})
	}
	if len(vals) == 0 {
		return nil
	}
	return &gexfAttValues{Values: vals}
}

func declaredAttrs(sets []gexfAttrSet, class string) map[string]gexfAttr {
	out := make(map[string]gexfAttr)
	for _, s := range sets {
		if s.Class != class {
			continue
		}
		for _, a := range s.Attrs {
			out[a.ID] = a
		}
	}
	return out
}

func decodeAttValues(vals *gexfAttValues, declared map[string]gexfAttr) map[string]any {
	attrs := make(map[string]any)
	if vals == nil {
		return attrs
	}
	for _, av := range vals.Values {
		decl, ok := declared[av.For]
		if !ok {
			continue
		}
		attrs[decl.Title] = decodeValue(av.Value, decl.Type)
	}
	return attrs
}

func decodeValue(s, typ string) any {
	switch typ {
	case "long", "integer":
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	case "double", "float":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

func inferNodeAttrTypes(g *socialgraph.Graph, keys []string) map[string]string {
	types := make(map[string]string, len(keys))
	for _, k := range keys {
		types[k] = "string"
	}
	for _, k := range keys {
		var vals []any
		for _, id := range g.Nodes() {
			if v, ok := g.NodeAttrs(id)[k]; ok && v != nil {
				vals = append(vals, v)
			}
		}
		types[k] = inferType(vals)
	}
	return types
}

func inferEdgeAttrTypes(g *socialgraph.Graph, keys []string) map[string]string {
	types := make(map[string]string, len(keys))
	for _, k := range keys {
		var vals []any
		for _, e := range g.Edges() {
			if v, ok := e.Attrs[k]; ok && v != nil {
				vals = append(vals, v)
			}
		}
		types[k] = inferType(vals)
	}
	return types
}

// inferType picks the declared GEXF type a key's observed values all
// share, defaulting to string on any mix.
func inferType(vals []any) string {
	if len(vals) == 0 {
		return "string"
	}
	typ := ""
	for _, v := range vals {
		var t string
		switch v.(type) {
		case bool:
			t = "boolean"
		case int, int64:
			t = "long"
		case float64:
			t = "double"
		default:
			return "string"
		}
		if typ == "" {
			typ = t
		} else if typ != t {
			return "string"
		}
	}
	return typ
}
