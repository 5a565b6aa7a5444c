package index

import (
	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
)

const (
	singleTreeName = "index.wildcard.single"
	multiTreeName  = "index.wildcard.multi"
)

// Wildcard is the two-part wildcard index: a single-level sub-index
// keyed by structural pattern, and a multi-level sub-index keyed by
// path suffix, together accelerating "*" and "**" pattern queries.
type Wildcard struct {
	single kv.Tree
	multi  kv.Tree
}

// NewWildcard opens the wildcard sub-index trees within engine.
func NewWildcard(engine kv.Engine) *Wildcard {
	return &Wildcard{
		single: engine.Tree(singleTreeName),
		multi:  engine.Tree(multiTreeName),
	}
}

// Empty reports whether either sub-index tree holds no entries.
func (x *Wildcard) Empty() bool {
	return x.single.Len() == 0 || x.multi.Len() == 0
}

// Add registers path with both sub-indexes.
func (x *Wildcard) Add(p path.Path) {
	n := len(p.Segments)
	for i := 0; i < n; i++ {
		key := []byte(encodeStructuralKey(p, i))
		existing := decodePathSet(x.getRaw(x.single, key))
		if !containsPath(existing, p) {
			existing = append(existing, p)
		}
		x.single.Insert(key, encodePathSet(existing))
	}
	for start := 0; start < n; start++ {
		key := []byte(encodeSuffixKey(p, start))
		existing := decodePathSet(x.getRaw(x.multi, key))
		if !containsPath(existing, p) {
			existing = append(existing, p)
		}
		x.multi.Insert(key, encodePathSet(existing))
	}
}

// Remove unregisters path from both sub-indexes.
func (x *Wildcard) Remove(p path.Path) {
	n := len(p.Segments)
	for i := 0; i < n; i++ {
		key := []byte(encodeStructuralKey(p, i))
		existing := removePath(decodePathSet(x.getRaw(x.single, key)), p)
		if len(existing) == 0 {
			x.single.Remove(key)
		} else {
			x.single.Insert(key, encodePathSet(existing))
		}
	}
	for start := 0; start < n; start++ {
		key := []byte(encodeSuffixKey(p, start))
		existing := removePath(decodePathSet(x.getRaw(x.multi, key)), p)
		if len(existing) == 0 {
			x.multi.Remove(key)
		} else {
			x.multi.Insert(key, encodePathSet(existing))
		}
	}
}

func (x *Wildcard) getRaw(t kv.Tree, key []byte) []byte {
	v, ok := t.Get(key)
	if !ok {
		return nil
	}
	return v
}

// FindByPattern dispatches by pattern shape: a pattern with
// only SingleWildcard segments (no "**") is answered by the single-level
// structural key; a pattern containing "**" is answered by the
// multi-level suffix index, verifying every candidate with Matches.
func (x *Wildcard) FindByPattern(pattern path.Path) []path.Path {
	if pos := pattern.FirstMultiWildcard(); pos >= 0 {
		return x.queryMulti(pattern, pos)
	}
	if key, ok := structuralKeyForPattern(pattern); ok {
		return decodePathSet(x.getRaw(x.single, []byte(key)))
	}
	// Pattern has more than one SingleWildcard, which the single key
	// format can't express in one lookup, or no wildcard at all: fall
	// back to a full scan + filter, the same
	// correctness fallback the prefix index uses.
	return x.scanAndFilter(pattern)
}

func (x *Wildcard) queryMulti(pattern path.Path, multiPos int) []path.Path {
	suffix := pattern.Suffix(multiPos + 1)

	if suffix.Empty() {
		// Terminal "**": every path is a candidate. The multi sub-index's
		// start=0 entries enumerate every indexed path exactly once.
		return x.scanMultiAndFilter(pattern)
	}

	if suffix.HasWildcard() {
		// The tail after "**" itself carries a wildcard (e.g. "a.**.*.c"):
		// the suffix sub-index only stores concrete literal suffixes, so no
		// exact key can represent it. Fall back to the scan+filter path.
		return x.scanMultiAndFilter(pattern)
	}

	// The suffix is a concrete tail (the common case this sub-index
	// accelerates); its encoded form matches an indexed suffix key
	// exactly, so an exact lookup is both sufficient and avoids the
	// false-prefix problem a byte-prefix scan would have on sibling
	// segment names (e.g. "bio" vs "biography"). Matches is still the
	// final arbiter for any pattern segment (wildcard or not) preceding
	// the located "**".
	key := []byte(encodeSuffixKey(pattern, multiPos+1))
	var out []path.Path
	for _, p := range decodePathSet(x.getRaw(x.multi, key)) {
		if p.Matches(pattern) {
			out = append(out, p)
		}
	}
	return out
}

func (x *Wildcard) scanMultiAndFilter(pattern path.Path) []path.Path {
	var seen []path.Path
	var out []path.Path
	x.multi.All(func(_, v []byte) bool {
		for _, p := range decodePathSet(v) {
			if containsPath(seen, p) {
				continue
			}
			seen = append(seen, p)
			if p.Matches(pattern) {
				out = append(out, p)
			}
		}
		return true
	})
	return out
}

func (x *Wildcard) scanAndFilter(pattern path.Path) []path.Path {
	var seen []path.Path
	var out []path.Path
	x.single.All(func(_, v []byte) bool {
		for _, p := range decodePathSet(v) {
			if containsPath(seen, p) {
				continue
			}
			seen = append(seen, p)
			if p.Matches(pattern) {
				out = append(out, p)
			}
		}
		return true
	})
	return out
}
