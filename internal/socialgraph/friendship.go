package socialgraph

import (
	"fedilens/internal/model"
)

// EdgeStrategy names how friendship edges were produced, decided once
// per build so the choice is auditable.
type EdgeStrategy int

const (
	// ExplicitEdges: at least one supplied edge hint resolved.
	ExplicitEdges EdgeStrategy = iota
	// DomainFallback: no hint resolved; users are linked along a path
	// within each shared-domain bucket.
	DomainFallback
)

func (s EdgeStrategy) String() string {
	if s == ExplicitEdges {
		return "explicit_edges"
	}
	return "domain_fallback"
}

// FriendshipResult carries the built graph plus how its edges came to be.
type FriendshipResult struct {
	Graph    *Graph
	Strategy EdgeStrategy
	// Hints that failed to resolve or were self-loops
	SkippedHints int
}

type resolvedHint struct {
	src, dst, reason string
}

// BuildFriendship assembles the undirected friendship graph over
// accounts. Edge hints are resolved first, by id or by acct lookup;
// hints missing either endpoint or resolving to a self-loop are
// skipped. If zero hints survive, the domain fallback applies: accounts
// are bucketed by derived domain and each bucket of size n gets n−1
// edges linking consecutive members, bounding edge count linearly
// rather than forming a clique. The fallback is deterministic given the
// same account order and domain assignment.
func BuildFriendship(users []model.Account, hints []model.EdgeHint) FriendshipResult {
	g := New("Friendship", false)

	idByAcct := make(map[string]string, len(users))
	for _, u := range users {
		idByAcct[u.Acct] = u.ID
		g.AddNode(u.ID, map[string]any{
			"acct":         u.Acct,
			"username":     u.Username,
			"display_name": u.DisplayName,
			"url":          u.URL,
			"followers":    derefInt(u.FollowersCount),
			"following":    derefInt(u.FollowingCount),
			"statuses":     derefInt(u.StatusesCount),
			"domain":       u.Domain,
		})
	}

	resolved, skipped := resolveHints(hints, idByAcct, g)
	strategy := ExplicitEdges
	if len(resolved) == 0 {
		strategy = DomainFallback
	}

	switch strategy {
	case ExplicitEdges:
		for _, h := range resolved {
			g.AddEdge(h.src, h.dst, map[string]any{"reason": h.reason})
		}
	case DomainFallback:
		addDomainPathEdges(g)
	}

	return FriendshipResult{Graph: g, Strategy: strategy, SkippedHints: skipped}
}

// resolveHints maps each hint to an id pair via direct ids or acct
// lookup, dropping unresolvable endpoints, ids outside the node set,
// and self-loops.
func resolveHints(hints []model.EdgeHint, idByAcct map[string]string, g *Graph) ([]resolvedHint, int) {
	var out []resolvedHint
	skipped := 0
	for _, h := range hints {
		src := h.SrcID
		if src == "" {
			src = idByAcct[h.SrcAcct]
		}
		dst := h.DstID
		if dst == "" {
			dst = idByAcct[h.DstAcct]
		}
		if src == "" || dst == "" || src == dst || !g.HasNode(src) || !g.HasNode(dst) {
			skipped++
			continue
		}
		reason := h.Reason
		if reason == "" {
			reason = "follow"
		}
		out = append(out, resolvedHint{src: src, dst: dst, reason: reason})
	}
	return out, skipped
}

// addDomainPathEdges links consecutive same-domain accounts. A bucket
// of size n yields exactly n−1 edges; singletons stay isolated.
func addDomainPathEdges(g *Graph) {
	byDomain := make(map[string][]string)
	var domains []string
	for _, id := range g.Nodes() {
		domain, _ := g.NodeAttrs(id)["domain"].(string)
		if domain == "" {
			domain = "unknown"
		}
		if _, ok := byDomain[domain]; !ok {
			domains = append(domains, domain)
		}
		byDomain[domain] = append(byDomain[domain], id)
	}
	for _, domain := range domains {
		ids := byDomain[domain]
		for i := 0; i+1 < len(ids); i++ {
			g.AddEdge(ids[i], ids[i+1], map[string]any{"reason": "same_domain"})
		}
	}
}
