// Package kv defines the ordered key-value substrate the rest of the
// system is built on: named sub-trees, insert/get/remove, full
// iteration, inclusive-start/exclusive-end range scan, prefix scan, and a
// durable flush barrier. The choice of on-disk embedded engine is out of
// scope; this package ships one concrete, in-memory implementation over
// github.com/emirpasic/gods/v2/trees/redblacktree as the ordered index.
package kv

import (
	"sort"
	"sync"

	"github.com/emirpasic/gods/v2/trees/redblacktree"
)

// Tree is one ordered namespace within an Engine. Keys and values are
// arbitrary byte sequences; ordering is lexicographic on the key bytes.
type Tree interface {
	Insert(key, value []byte)
	Get(key []byte) ([]byte, bool)
	Remove(key []byte)
	Len() int

	// All visits every entry in key order. fn returning false stops
	// iteration early.
	All(fn func(key, value []byte) bool)

	// Range visits entries with key in [start, end) in key order.
	// A nil end means "no upper bound".
	Range(start, end []byte, fn func(key, value []byte) bool)

	// Prefix visits every entry whose key begins with prefix, in key
	// order.
	Prefix(prefix []byte, fn func(key, value []byte) bool)
}

// Engine owns a set of named Trees plus a durability barrier.
type Engine interface {
	Tree(name string) Tree
	Flush() error
	Close() error
}

// NewMemEngine returns an in-memory Engine backed by red-black trees.
// Trees are created lazily on first access and persist for the engine's
// lifetime.
func NewMemEngine() Engine {
	return &memEngine{trees: make(map[string]*memTree)}
}

type memEngine struct {
	mu    sync.Mutex
	trees map[string]*memTree
}

func (e *memEngine) Tree(name string) Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.trees[name]
	if !ok {
		t = newMemTree()
		e.trees[name] = t
	}
	return t
}

// Flush is a no-op for the in-memory engine: there is nothing to
// durably sync, so it always succeeds. A disk-backed Engine would sync
// its underlying file(s) here.
func (e *memEngine) Flush() error { return nil }

func (e *memEngine) Close() error { return nil }

type memTree struct {
	mu sync.RWMutex
	rb *redblacktree.Tree[string, []byte]
}

func newMemTree() *memTree {
	return &memTree{rb: redblacktree.New[string, []byte]()}
}

func (t *memTree) Insert(key, value []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rb.Put(string(key), append([]byte(nil), value...))
}

func (t *memTree) Get(key []byte) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rb.Get(string(key))
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (t *memTree) Remove(key []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rb.Remove(string(key))
}

func (t *memTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rb.Size()
}

// sortedKeys returns the tree's keys in ascending order. gods' red-black
// tree keeps entries sorted internally; Keys() surfaces that order
// directly rather than requiring a separate sort pass.
func (t *memTree) sortedKeys() []string {
	return t.rb.Keys()
}

func (t *memTree) All(fn func(key, value []byte) bool) {
	t.mu.RLock()
	keys := t.sortedKeys()
	t.mu.RUnlock()

	for _, k := range keys {
		v, ok := t.Get([]byte(k))
		if !ok {
			continue
		}
		if !fn([]byte(k), v) {
			return
		}
	}
}

func (t *memTree) Range(start, end []byte, fn func(key, value []byte) bool) {
	t.mu.RLock()
	keys := t.sortedKeys()
	t.mu.RUnlock()

	startStr := string(start)
	lo := sort.SearchStrings(keys, startStr)

	for _, k := range keys[lo:] {
		if end != nil && k >= string(end) {
			break
		}
		v, ok := t.Get([]byte(k))
		if !ok {
			continue
		}
		if !fn([]byte(k), v) {
			return
		}
	}
}

func (t *memTree) Prefix(prefix []byte, fn func(key, value []byte) bool) {
	p := string(prefix)
	t.mu.RLock()
	keys := t.sortedKeys()
	t.mu.RUnlock()

	lo := sort.SearchStrings(keys, p)
	for _, k := range keys[lo:] {
		if len(k) < len(p) || k[:len(p)] != p {
			break
		}
		v, ok := t.Get([]byte(k))
		if !ok {
			continue
		}
		if !fn([]byte(k), v) {
			return
		}
	}
}
