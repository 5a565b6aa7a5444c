// Package worker implements the asynchronous index worker: a single
// background goroutine owns mutation of every registered index, fed by
// a bounded FIFO channel. A Go channel is the direct idiomatic
// expression of a bounded single-consumer/multi-producer queue; the
// slice-backed internal/queue used elsewhere in this codebase is not reused here
// because it grows without bound, which would contradict the fixed
// channel capacity this worker is built around.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/path"
)

// Indexer is anything the worker can dispatch Add/Remove mutations to.
// internal/index.Prefix and internal/index.Wildcard satisfy this.
type Indexer interface {
	Add(p path.Path)
	Remove(p path.Path)
}

// opKind tags a queued operation.
type opKind int

const (
	opAdd opKind = iota
	opRemove
	opFlush
	opShutdown
)

type op struct {
	kind opKind
	path path.Path
	done chan struct{} // closed once a Flush op has been dequeued
}

// Event is delivered to an optional observer whenever a single index
// fails to apply a mutation. The worker continues with the remaining
// indexes either way.
type Event struct {
	Path  path.Path
	Add   bool
	Cause any
}

// Stats holds the worker's atomically-updated counters.
type Stats struct {
	TotalOperations   uint64
	TotalAdds         uint64
	TotalRemoves      uint64
	PendingOperations uint64
}

// DefaultCapacity is the worker's default bounded-channel capacity.
const DefaultCapacity = 1000

// Worker owns the single background task that serializes mutations
// across every registered index.
type Worker struct {
	ch      chan op
	done    chan struct{}
	observe func(Event)

	totalOperations   atomic.Uint64
	totalAdds         atomic.Uint64
	totalRemoves      atomic.Uint64
	pendingOperations atomic.Uint64

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// Start launches the worker loop dispatching to indexers, in
// registration order, and returns the running Worker. capacity <= 0
// uses DefaultCapacity.
func Start(capacity int, indexers ...Indexer) *Worker {
	return StartObserved(capacity, nil, indexers...)
}

// StartObserved is Start with an observer hook receiving an Event for
// every per-index application failure. A nil observe drops events.
func StartObserved(capacity int, observe func(Event), indexers ...Indexer) *Worker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	w := &Worker{
		ch:       make(chan op, capacity),
		done:     make(chan struct{}),
		observe:  observe,
		shutdown: make(chan struct{}),
	}
	go w.run(indexers)
	return w
}

func (w *Worker) run(indexers []Indexer) {
	defer close(w.done)
	for o := range w.ch {
		switch o.kind {
		case opAdd:
			w.dispatch(indexers, o.path, true)
		case opRemove:
			w.dispatch(indexers, o.path, false)
		case opFlush:
			if o.done != nil {
				close(o.done)
			}
		case opShutdown:
			if o.done != nil {
				close(o.done)
			}
			return
		}
	}
}

// dispatch applies add (or remove) to every indexer. A single index's
// failure (a panic recovered per-index) must not abort the others; the
// pending counter is decremented once at least one index reports
// success.
func (w *Worker) dispatch(indexers []Indexer, p path.Path, add bool) {
	succeeded := false
	for _, ix := range indexers {
		if cause, ok := applyOne(ix, p, add); ok {
			succeeded = true
		} else if w.observe != nil {
			w.observe(Event{Path: p, Add: add, Cause: cause})
		}
	}
	w.totalOperations.Add(1)
	if add {
		w.totalAdds.Add(1)
	} else {
		w.totalRemoves.Add(1)
	}
	if succeeded {
		w.pendingOperations.Add(^uint64(0)) // -1
	}
}

func applyOne(ix Indexer, p path.Path, add bool) (cause any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			cause = r
			ok = false
		}
	}()
	if add {
		ix.Add(p)
	} else {
		ix.Remove(p)
	}
	return nil, true
}

// Submit enqueues an Add or Remove operation. It increments
// PendingOperations immediately, then blocks if the channel is full —
// the only suspension point in the index plane.
func (w *Worker) Submit(add bool, p path.Path) error {
	select {
	case <-w.shutdown:
		return herr.Internal("worker: submit after shutdown")
	default:
	}

	w.pendingOperations.Add(1)
	kind := opRemove
	if add {
		kind = opAdd
	}

	select {
	case w.ch <- op{kind: kind, path: p}:
		return nil
	case <-w.shutdown:
		w.pendingOperations.Add(^uint64(0))
		return herr.Internal("worker: submit after shutdown")
	}
}

// Flush enqueues a Flush barrier and blocks until the worker has
// dequeued it, meaning every operation submitted before this call has
// been applied — an await-drain barrier.
func (w *Worker) Flush() error {
	done := make(chan struct{})
	select {
	case w.ch <- op{kind: opFlush, done: done}:
	case <-w.shutdown:
		return herr.Internal("worker: flush after shutdown")
	}
	<-done
	return nil
}

// Shutdown drains the queue then stops the worker loop. It is safe to
// call more than once.
func (w *Worker) Shutdown() {
	w.shutdownOnce.Do(func() {
		close(w.shutdown)
		// The channel is deliberately never closed: a Submit racing this
		// shutdown may still be parked on a send, and the opShutdown
		// sentinel already terminates the loop.
		done := make(chan struct{})
		w.ch <- op{kind: opShutdown, done: done}
		<-done
	})
	<-w.done
}

// StatsSnapshot returns the current counters.
func (w *Worker) StatsSnapshot() Stats {
	return Stats{
		TotalOperations:   w.totalOperations.Load(),
		TotalAdds:         w.totalAdds.Load(),
		TotalRemoves:      w.totalRemoves.Load(),
		PendingOperations: w.pendingOperations.Load(),
	}
}
