package dedup

import "testing"

func TestAdmitOncePerID(t *testing.T) {
	s := NewSet()
	if !s.Admit("1") {
		t.Fatal("first admit should succeed")
	}
	// same id arriving on a later page
	if s.Admit("1") {
		t.Fatal("repeat admit should be rejected")
	}
	if !s.Admit("2") {
		t.Fatal("new id should be admitted")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 admitted, got %d", s.Len())
	}
}

func TestAdmitRejectsEmpty(t *testing.T) {
	s := NewSet()
	if s.Admit("") {
		t.Fatal("empty id must not be admitted")
	}
}

func TestOrderPreserved(t *testing.T) {
	s := NewSet()
	for _, id := range []string{"c", "a", "b", "a", "c"} {
		s.Admit(id)
	}
	got := s.Order()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
