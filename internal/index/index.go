// Package index implements the two secondary indexes — a prefix index
// and a two-part wildcard index — maintained over the ordered kv
// substrate, plus a unified pattern dispatcher.
package index

import (
	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
)

// Set bundles the prefix and wildcard indexes for the read and rebuild
// paths. The index worker registers each index individually, not the
// bundle, so one index's failure never blocks the other's write.
type Set struct {
	Prefix   *Prefix
	Wildcard *Wildcard
}

// Open opens both indexes' named trees within engine.
func Open(engine kv.Engine) *Set {
	return &Set{
		Prefix:   NewPrefix(engine),
		Wildcard: NewWildcard(engine),
	}
}

// NeedsRebuild reports whether any index tree is empty. No schema
// version is stored; every index is rebuildable from the primary tree
// alone, and an empty or absent index tree on open means the whole set
// must be rebuilt.
func (s *Set) NeedsRebuild() bool {
	return s.Prefix.Empty() || s.Wildcard.Empty()
}

// Add inserts path into every index. Used by the rebuild path; live
// writes go through the worker's per-index dispatch instead.
func (s *Set) Add(p path.Path) {
	s.Prefix.Add(p)
	s.Wildcard.Add(p)
}

// Remove deletes path from every index.
func (s *Set) Remove(p path.Path) {
	s.Prefix.Remove(p)
	s.Wildcard.Remove(p)
}

// FindByPattern dispatches by pattern shape:
// no wildcards -> prefix index exact lookup; otherwise -> wildcard
// index (single or multi sub-index depending on wildcard kind).
func (s *Set) FindByPattern(pattern path.Path) []path.Path {
	if !pattern.HasWildcard() {
		return s.Prefix.FindByPattern(pattern)
	}
	return s.Wildcard.FindByPattern(pattern)
}

// FindByPrefix answers a prefix listing via the prefix index.
func (s *Set) FindByPrefix(prefix path.Path) []path.Path {
	return s.Prefix.FindByPrefix(prefix)
}
