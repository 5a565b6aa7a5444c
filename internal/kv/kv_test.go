package kv

import "testing"

func TestInsertGetRemove(t *testing.T) {
	e := NewMemEngine()
	tr := e.Tree("t")

	tr.Insert([]byte("a"), []byte("1"))
	v, ok := tr.Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("expected (1,true), got (%s,%v)", v, ok)
	}

	tr.Remove([]byte("a"))
	if _, ok := tr.Get([]byte("a")); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestRangeInclusiveStartExclusiveEnd(t *testing.T) {
	e := NewMemEngine()
	tr := e.Tree("t")
	for _, k := range []string{"a", "b", "c", "d"} {
		tr.Insert([]byte(k), []byte(k))
	}

	var got []string
	tr.Range([]byte("b"), []byte("d"), func(k, _ []byte) bool {
		got = append(got, string(k))
		return true
	})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected range result: %v", got)
	}
}

func TestPrefixScan(t *testing.T) {
	e := NewMemEngine()
	tr := e.Tree("t")
	tr.Insert([]byte("users:u1"), []byte("1"))
	tr.Insert([]byte("users:u2"), []byte("1"))
	tr.Insert([]byte("use"), []byte("1"))

	var got []string
	tr.Prefix([]byte("users:"), func(k, _ []byte) bool {
		got = append(got, string(k))
		return true
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
}

func TestTreesAreNamespaced(t *testing.T) {
	e := NewMemEngine()
	a := e.Tree("a")
	b := e.Tree("b")
	a.Insert([]byte("k"), []byte("a-value"))
	if _, ok := b.Get([]byte("k")); ok {
		t.Fatal("expected trees to be independent namespaces")
	}
}
