package index

import (
	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
)

// prefixTreeName is the named tree under which the index persists its
// entries within a shared kv.Engine; each index owns its own named
// tree.
const prefixTreeName = "index.prefix"

// marker is the value stored for a present key in the prefix index; its
// content carries no information, only presence.
var marker = []byte{1}

// Prefix is the prefix secondary index: an ordered-KV tree mapping
// encoded path -> marker, preserving the property that encode(P) begins
// with encode(Q) + sep for every non-empty proper prefix Q of P.
type Prefix struct {
	tree kv.Tree
}

// NewPrefix opens the prefix index tree within engine.
func NewPrefix(engine kv.Engine) *Prefix {
	return &Prefix{tree: engine.Tree(prefixTreeName)}
}

// Empty reports whether the index tree holds no entries.
func (x *Prefix) Empty() bool { return x.tree.Len() == 0 }

// Add inserts path into the index.
func (x *Prefix) Add(p path.Path) {
	x.tree.Insert([]byte(encodePrefixKey(p)), marker)
}

// Remove deletes path from the index.
func (x *Prefix) Remove(p path.Path) {
	x.tree.Remove([]byte(encodePrefixKey(p)))
}

// FindByPrefix returns every indexed path starting with prefix,
// including prefix itself if it is present. This is a range scan over
// [encode(prefix)+sep, encode(prefix)+sep+0xFF) for proper
// descendants, plus an exact-match probe on encode(prefix) itself — the
// separator is required so that e.g. prefix "use" never matches the
// unrelated sibling segment "users".
func (x *Prefix) FindByPrefix(prefix path.Path) []path.Path {
	var out []path.Path

	if prefix.Empty() {
		x.tree.All(func(k, _ []byte) bool {
			if p, err := path.Parse(decodeFromKey(string(k))); err == nil {
				out = append(out, p)
			}
			return true
		})
		return out
	}

	key := encodePrefixKey(prefix)

	if _, ok := x.tree.Get([]byte(key)); ok {
		out = append(out, prefix)
	}

	descendantPrefix := key + sep
	x.tree.Prefix([]byte(descendantPrefix), func(k, _ []byte) bool {
		if p, err := path.Parse(decodeFromKey(string(k))); err == nil {
			out = append(out, p)
		}
		return true
	})
	return out
}

// decodeFromKey converts an encoded prefix-index key back to its textual
// path form. The key joins every segment with sep (':'), while the
// textual path joins with '.' and writes an array index [N] directly
// after the preceding segment; decodeFromKey splits on sep and rejoins
// with '.', omitting the dot before each [N] part.
func decodeFromKey(key string) string {
	return rejoinSegments(splitKey(key))
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	parts = append(parts, key[start:])
	return parts
}

func rejoinSegments(parts []string) string {
	out := ""
	for i, p := range parts {
		isIndex := len(p) >= 2 && p[0] == '[' && p[len(p)-1] == ']'
		if i > 0 && !isIndex {
			out += "."
		}
		out += p
	}
	return out
}

// FindByPattern implements the index's correctness fallback: a
// no-wildcard pattern runs FindByPrefix and keeps only the hit equal to
// the pattern itself (descendants are dropped); a wildcarded pattern
// scans the full index and filters with Matches.
func (x *Prefix) FindByPattern(pattern path.Path) []path.Path {
	if !pattern.HasWildcard() {
		var out []path.Path
		for _, p := range x.FindByPrefix(pattern) {
			if p.Equal(pattern) {
				out = append(out, p)
			}
		}
		return out
	}

	var out []path.Path
	x.tree.All(func(k, _ []byte) bool {
		if p, err := path.Parse(decodeFromKey(string(k))); err == nil && p.Matches(pattern) {
			out = append(out, p)
		}
		return true
	})
	return out
}
