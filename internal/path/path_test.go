package path

import "testing"

func TestParseSimple(t *testing.T) {
	p, err := Parse("users.u1.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", p.Len())
	}
	if p.Segments[0] != NamedSeg("users") {
		t.Fatalf("unexpected first segment: %+v", p.Segments[0])
	}
}

func TestParseArrayIndex(t *testing.T) {
	p, err := Parse("u.tags[0]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Segment{NamedSeg("u"), NamedSeg("tags"), IndexSeg(0)}
	if len(p.Segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(p.Segments))
	}
	for i := range want {
		if !p.Segments[i].Equal(want[i]) {
			t.Fatalf("segment %d: expected %+v, got %+v", i, want[i], p.Segments[i])
		}
	}
}

func TestParseWildcards(t *testing.T) {
	p, err := Parse("users.*.bio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Segments[1].Kind != SingleWildcard {
		t.Fatalf("expected SingleWildcard, got %v", p.Segments[1].Kind)
	}

	p2, err := Parse("users.**.bio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.Segments[1].Kind != MultiWildcard {
		t.Fatalf("expected MultiWildcard, got %v", p2.Segments[1].Kind)
	}
}

func TestParseEmptyRejected(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRoundTrip(t *testing.T) {
	raws := []string{"a", "a.b.c", "u.tags[0]", "a.b[1][2]", "a.*.c", "a.**.c"}
	for _, raw := range raws {
		p, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		p2, err := Parse(p.String())
		if err != nil {
			t.Fatalf("re-parsing %q: %v", p.String(), err)
		}
		if !p.Equal(p2) {
			t.Fatalf("round-trip mismatch for %q: got %q", raw, p.String())
		}
	}
}

func TestStartsWith(t *testing.T) {
	p := MustParse("users.u1.profile.bio")
	if !p.StartsWith(MustParse("users.u1")) {
		t.Fatal("expected prefix match")
	}
	if !p.StartsWith(Path{}) {
		t.Fatal("empty prefix should always match")
	}
	if !p.StartsWith(p) {
		t.Fatal("path should start with itself")
	}
	if p.StartsWith(MustParse("users.u2")) {
		t.Fatal("unexpected prefix match")
	}
}

func TestMatchesReflexive(t *testing.T) {
	p := MustParse("a.b.c")
	if !p.Matches(p) {
		t.Fatal("matches should be reflexive for wildcard-free paths")
	}
}

func TestMatchesTerminalMultiWildcard(t *testing.T) {
	if !MustParse("a.b.c").Matches(MustParse("a.**")) {
		t.Fatal("expected terminal ** to match")
	}
	if !MustParse("a").Matches(MustParse("a.**")) {
		t.Fatal("expected terminal ** to match zero-length suffix")
	}
}

func TestMatchesNonTerminalMultiWildcard(t *testing.T) {
	if !MustParse("a.x.y.c").Matches(MustParse("a.**.c")) {
		t.Fatal("expected non-terminal ** to match multi-segment suffix")
	}
	if MustParse("a").Matches(MustParse("a.**.c")) {
		t.Fatal("expected a.**.c not to match bare 'a'")
	}
}

func TestMatchesSingleWildcard(t *testing.T) {
	if !MustParse("users.u1.name").Matches(MustParse("users.*.name")) {
		t.Fatal("expected single wildcard match")
	}
	if MustParse("users.u1.profile.name").Matches(MustParse("users.*.name")) {
		t.Fatal("single wildcard must not change path length")
	}
}
