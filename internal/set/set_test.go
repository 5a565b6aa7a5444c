package set

import "testing"

func TestAddKeepsFirstSeenOrder(t *testing.T) {
	s := New("b", "a", "b", "c", "a")
	got := s.Values()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRemoveKeepsRelativeOrder(t *testing.T) {
	s := New(1, 2, 3, 4)
	s.Remove(2, 9)
	got := s.Values()
	want := []int{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if s.Has(2) {
		t.Fatal("2 should be gone")
	}
}

func TestIntersectKeepsReceiverOrder(t *testing.T) {
	a := New("u3", "u1", "u2")
	b := New("u2", "u3")
	got := a.Intersect(b).Values()
	want := []string{"u3", "u2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestUnionAppendsNewElements(t *testing.T) {
	a := New("u1", "u2")
	b := New("u2", "u3")
	got := a.Union(b).Values()
	want := []string{"u1", "u2", "u3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLen(t *testing.T) {
	s := New[int]()
	if s.Len() != 0 {
		t.Fatalf("expected empty, got %d", s.Len())
	}
	s.Add(1, 1, 2)
	if s.Len() != 2 {
		t.Fatalf("expected 2, got %d", s.Len())
	}
}
