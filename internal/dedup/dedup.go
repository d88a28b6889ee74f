package dedup

// Set tracks identifiers admitted across an unbounded sequence of
// records, spanning pagination cursors and seed sources. It never
// evicts; it lives for one collection run.
type Set struct {
	seen  map[string]struct{}
	order []string
}

func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Admit records id on first sight and returns true; repeats return
// false without mutation. Empty ids are never admitted.
func (s *Set) Admit(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Has reports whether id was previously admitted.
func (s *Set) Has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *Set) Len() int { return len(s.order) }

// Order returns admitted ids in first-admission order.
func (s *Set) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
