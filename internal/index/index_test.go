package index

import (
	"sort"
	"testing"

	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
)

func pathStrings(ps []path.Path) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	sort.Strings(out)
	return out
}

func TestPrefixFindByPrefixExactAndDescendants(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("users.u1.name"))
	idx.Add(path.MustParse("users.u1"))
	idx.Add(path.MustParse("users.u2.name"))

	got := pathStrings(idx.FindByPrefix(path.MustParse("users.u1")))
	want := []string{"users.u1", "users.u1.name"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPrefixFindByPrefixDoesNotFalsePrefixMatch(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("users.u1.name"))

	got := idx.FindByPrefix(path.MustParse("use"))
	if len(got) != 0 {
		t.Fatalf("expected no match for non-segment prefix 'use', got %v", pathStrings(got))
	}
}

func TestPrefixFindByPrefixEmptyIsFullScan(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("a.b"))
	idx.Add(path.MustParse("c.d"))

	got := idx.FindByPrefix(path.Path{})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for empty prefix scan, got %d", len(got))
	}
}

func TestWildcardSingleQuery(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("users.u1.name"))
	idx.Add(path.MustParse("users.u2.name"))
	idx.Add(path.MustParse("users.u1.age"))

	got := pathStrings(idx.FindByPattern(path.MustParse("users.*.name")))
	want := []string{"users.u1.name", "users.u2.name"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWildcardTerminalMultiQuery(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("a.b.c"))
	idx.Add(path.MustParse("a.x"))
	idx.Add(path.MustParse("z.y"))

	got := pathStrings(idx.FindByPattern(path.MustParse("a.**")))
	want := []string{"a.b.c", "a.x"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWildcardNonTerminalMultiQueryDoesNotFalseSuffixMatch(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("users.u1.biography"))
	idx.Add(path.MustParse("users.u1.profile.bio"))

	got := idx.FindByPattern(path.MustParse("users.**.bio"))
	want := []string{"users.u1.profile.bio"}
	if len(got) != 1 || got[0].String() != want[0] {
		t.Fatalf("expected only exact suffix 'bio' match, got %v", pathStrings(got))
	}
}

func TestWildcardMultiQueryWithFurtherWildcardInSuffix(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	idx.Add(path.MustParse("a.x.tags.admin"))
	idx.Add(path.MustParse("a.y.tags.owner"))
	idx.Add(path.MustParse("a.z.notes.admin"))

	got := pathStrings(idx.FindByPattern(path.MustParse("a.**.*.admin")))
	want := []string{"a.x.tags.admin", "a.z.notes.admin"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIndexRemove(t *testing.T) {
	idx := Open(kv.NewMemEngine())
	p := path.MustParse("users.u1.name")
	idx.Add(p)
	idx.Remove(p)

	if got := idx.FindByPrefix(path.MustParse("users.u1")); len(got) != 0 {
		t.Fatalf("expected empty after remove, got %v", pathStrings(got))
	}
	if got := idx.FindByPattern(path.MustParse("users.*.name")); len(got) != 0 {
		t.Fatalf("expected empty wildcard result after remove, got %v", pathStrings(got))
	}
}
