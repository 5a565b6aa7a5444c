// Package store implements the primary store: the authoritative
// (path -> value) map over the ordered kv substrate, wired to the
// secondary indexes via the asynchronous index worker.
package store

import (
	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/index"
	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/value"
	"github.com/killiandvcz/hyperion/internal/worker"
)

const defaultTreeName = "default"

// Endpoint is a (Path, Value) pair, the only storage granularity.
type Endpoint struct {
	Path  path.Path
	Value value.Value
}

// Store is the primary (path -> value) map. It is safe for concurrent
// use: the default tree's own locking provides single-key atomicity
// on the primary-store plane, while index mutations are fanned out
// asynchronously through Worker.
type Store struct {
	engine kv.Engine
	tree   kv.Tree
	index  *index.Set
	worker *worker.Worker
}

// Option configures a Store at construction.
type Option func(*options)

type options struct {
	channelCapacity int
	observe         func(worker.Event)
}

// WithChannelCapacity overrides the index worker's bounded channel
// capacity (default worker.DefaultCapacity).
func WithChannelCapacity(n int) Option {
	return func(o *options) { o.channelCapacity = n }
}

// WithObserver installs a hook receiving a worker.Event for every
// per-index application failure.
func WithObserver(fn func(worker.Event)) Option {
	return func(o *options) { o.observe = fn }
}

// Open constructs a Store backed by engine, opening the default tree and
// the secondary indexes, and starting the index worker.
func Open(engine kv.Engine, opts ...Option) *Store {
	o := &options{channelCapacity: worker.DefaultCapacity}
	for _, opt := range opts {
		opt(o)
	}

	idx := index.Open(engine)
	s := &Store{
		engine: engine,
		tree:   engine.Tree(defaultTreeName),
		index:  idx,
	}
	s.rebuildIndexes()
	// Each index registers with the worker on its own: a failure in one
	// must not abort the other's write, and the pending counter drains on
	// any single index's success.
	s.worker = worker.StartObserved(o.channelCapacity, o.observe, idx.Prefix, idx.Wildcard)
	return s
}

// rebuildIndexes repopulates the secondary indexes from the default
// tree when a pre-existing engine arrives with endpoints but an empty or
// absent index tree. Re-adding paths already indexed is harmless, so the
// whole set rebuilds whenever any one tree is missing.
func (s *Store) rebuildIndexes() {
	if s.tree.Len() == 0 || !s.index.NeedsRebuild() {
		return
	}
	s.tree.All(func(k, _ []byte) bool {
		if p, err := decodeKey(k); err == nil {
			s.index.Add(p)
		}
		return true
	})
}

// Set is a total upsert: an existing value at path is replaced
// atomically at the KV level, and an Add is enqueued for the index
// worker.
func (s *Store) Set(p path.Path, v value.Value) error {
	if p.Empty() {
		return herr.InvalidOperation("empty path")
	}
	enc, err := v.Encode()
	if err != nil {
		return herr.Serialization("encoding value at %s: %v", p.String(), err)
	}
	s.tree.Insert(encodeKey(p), enc)
	return s.worker.Submit(true, p)
}

// Get reads the value at path, or NotFound if absent.
func (s *Store) Get(p path.Path) (value.Value, error) {
	if p.Empty() {
		return value.Value{}, herr.InvalidOperation("empty path")
	}
	raw, ok := s.tree.Get(encodeKey(p))
	if !ok {
		return value.Value{}, herr.NotFound(p.String())
	}
	v, err := value.Decode(raw)
	if err != nil {
		return value.Value{}, herr.Deserialization("decoding value at %s: %v", p.String(), err)
	}
	return v, nil
}

// Delete removes the endpoint at path. Deleting a missing path fails
// with NotFound.
func (s *Store) Delete(p path.Path) error {
	if p.Empty() {
		return herr.InvalidOperation("empty path")
	}
	if _, ok := s.tree.Get(encodeKey(p)); !ok {
		return herr.NotFound(p.String())
	}
	s.tree.Remove(encodeKey(p))
	return s.worker.Submit(false, p)
}

// Exists reports whether an endpoint is present at path.
func (s *Store) Exists(p path.Path) (bool, error) {
	if p.Empty() {
		return false, herr.InvalidOperation("empty path")
	}
	_, ok := s.tree.Get(encodeKey(p))
	return ok, nil
}

// Count returns the total number of endpoints in the store.
func (s *Store) Count() int {
	return s.tree.Len()
}

// CountPrefix counts endpoints whose path starts with prefix, via a
// linear scan (no index required).
func (s *Store) CountPrefix(prefix path.Path) int {
	n := 0
	s.scanPrefix(prefix, func(Endpoint) bool { n++; return true })
	return n
}

// GetPrefix returns every (path, value) pair whose path starts with
// prefix, via a linear scan.
func (s *Store) GetPrefix(prefix path.Path) []Endpoint {
	var out []Endpoint
	s.scanPrefix(prefix, func(e Endpoint) bool { out = append(out, e); return true })
	return out
}

func (s *Store) scanPrefix(prefix path.Path, fn func(Endpoint) bool) {
	s.tree.All(func(k, v []byte) bool {
		p, err := decodeKey(k)
		if err != nil || !p.StartsWith(prefix) {
			return true
		}
		val, err := value.Decode(v)
		if err != nil {
			return true
		}
		return fn(Endpoint{Path: p, Value: val})
	})
}

// ListPrefix delegates to the prefix index.
func (s *Store) ListPrefix(prefix path.Path) []path.Path {
	return s.index.FindByPrefix(prefix)
}

// Query delegates pattern matching to the index layer, then reads each
// hit's value from the primary store.
func (s *Store) Query(pattern path.Path) []Endpoint {
	hits := s.index.FindByPattern(pattern)
	out := make([]Endpoint, 0, len(hits))
	for _, p := range hits {
		v, err := s.Get(p)
		if err != nil {
			continue
		}
		out = append(out, Endpoint{Path: p, Value: v})
	}
	return out
}

// Flush forces durability of accepted writes and triggers an index
// drain barrier (best-effort for indexes).
func (s *Store) Flush() error {
	if err := s.engine.Flush(); err != nil {
		return herr.Internal("flushing kv engine: %v", err)
	}
	return s.worker.Flush()
}

// Stats exposes the index worker's counters.
func (s *Store) Stats() worker.Stats {
	return s.worker.StatsSnapshot()
}

// Close stops the index worker and releases the kv engine.
func (s *Store) Close() error {
	s.worker.Shutdown()
	return s.engine.Close()
}

func encodeKey(p path.Path) []byte {
	return []byte(p.String())
}

func decodeKey(k []byte) (path.Path, error) {
	return path.Parse(string(k))
}
