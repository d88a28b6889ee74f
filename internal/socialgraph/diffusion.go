package socialgraph

import (
	"strings"

	"fedilens/internal/model"
)

// Relation kinds on diffusion edges.
const (
	KindReply = "reply"
	KindBoost = "boost"
)

// BuildDiffusion assembles the information-diffusion graph: a directed
// graph over posts where each edge runs parent → derivative, tagged
// reply or boost. An edge is added only when both endpoints are in the
// post set; a parent outside the crawl produces no edge and no error.
// A post carrying both a reply parent and a boost parent contributes
// two edges, one per parent.
func BuildDiffusion(posts []model.Post) *Graph {
	g := New("InformationDiffusion", true)

	for _, p := range posts {
		g.AddNode(p.ID, map[string]any{
			"author":     p.Account.Acct,
			"language":   deref(p.Language),
			"replies":    derefInt(p.RepliesCount),
			"reblogs":    derefInt(p.ReblogsCount),
			"favourites": derefInt(p.FavouritesCount),
			"url":        deref(p.URL),
			"tags":       strings.Join(p.Tags, ","),
		})
	}

	for _, p := range posts {
		if p.InReplyToID != nil && g.HasNode(*p.InReplyToID) {
			g.AddEdge(*p.InReplyToID, p.ID, map[string]any{"kind": KindReply})
		}
		if p.ReblogOfID != nil && g.HasNode(*p.ReblogOfID) {
			g.AddEdge(*p.ReblogOfID, p.ID, map[string]any{"kind": KindBoost})
		}
	}
	return g
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
