// Package hyperion is the public facade over the endpoint-first
// embedded database: path/value endpoints, prefix and wildcard
// secondary indexes, an asynchronous index worker, entity
// reconstruction, and the query language. Its shape — a functional-
// options constructor plus a handful of re-exported types aliasing the
// internal implementation — mirrors a typical builder/facade package.
package hyperion

import (
	"time"

	"github.com/killiandvcz/hyperion/internal/entity"
	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/ql"
	"github.com/killiandvcz/hyperion/internal/store"
	"github.com/killiandvcz/hyperion/internal/value"
	"github.com/killiandvcz/hyperion/internal/worker"
)

// Re-exported types forming the package's public wire boundary.
type (
	Path        = path.Path
	Value       = value.Value
	Entity      = entity.Entity
	Endpoint    = store.Endpoint
	Stats       = worker.Stats
	WorkerEvent = worker.Event
)

// Re-exported constructors/parsers.
var (
	ParsePath  = path.Parse
	NewNull    = value.NewNull
	NewBool    = value.NewBool
	NewInt     = value.NewInt
	NewFloat   = value.NewFloat
	NewString  = value.NewString
	NewBinary  = value.NewBinary
	ParseQuery = ql.Parse
)

// Option configures a Database at construction: the underlying store's
// options (channel capacity) plus the query evaluator's clock and ID
// generator.
type Option func(*options)

type options struct {
	storeOpts []store.Option
	clock     func() time.Time
	idGen     func() string
}

// WithChannelCapacity overrides the index worker's bounded channel
// capacity.
func WithChannelCapacity(n int) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, store.WithChannelCapacity(n)) }
}

// WithObserver installs a hook receiving a WorkerEvent for every
// per-index application failure inside the index worker.
func WithObserver(fn func(WorkerEvent)) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, store.WithObserver(fn)) }
}

// WithClock overrides the query evaluator's now() clock. Intended for
// deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithIDGenerator overrides the query evaluator's uuid() generator.
// Intended for deterministic tests.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.idGen = gen }
}

// Database is the top-level handle: primary store, secondary indexes,
// index worker and query evaluator wired together over a kv.Engine.
type Database struct {
	store *store.Store
	eval  *ql.Evaluator
}

// Open constructs a Database over an in-memory kv engine. The choice of
// on-disk embedded engine is out of scope; callers needing
// durability supply their own kv.Engine via OpenWithEngine.
func Open(opts ...Option) *Database {
	return OpenWithEngine(kv.NewMemEngine(), opts...)
}

// OpenWithEngine constructs a Database over a caller-supplied kv.Engine.
func OpenWithEngine(engine kv.Engine, opts ...Option) *Database {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := store.Open(engine, o.storeOpts...)
	eval := ql.NewEvaluator(s)
	if o.clock != nil {
		eval.Clock = o.clock
	}
	if o.idGen != nil {
		eval.IDGen = o.idGen
	}
	return &Database{store: s, eval: eval}
}

// Close stops the index worker and releases the kv engine.
func (d *Database) Close() error { return d.store.Close() }

// Set upserts the value at path.
func (d *Database) Set(p Path, v Value) error { return d.store.Set(p, v) }

// Get reads the value at path, or NotFound if absent.
func (d *Database) Get(p Path) (Value, error) { return d.store.Get(p) }

// Delete removes the endpoint at path. NotFound if absent.
func (d *Database) Delete(p Path) error { return d.store.Delete(p) }

// Exists reports whether an endpoint is present at path.
func (d *Database) Exists(p Path) (bool, error) { return d.store.Exists(p) }

// Count returns the total number of endpoints.
func (d *Database) Count() int { return d.store.Count() }

// CountPrefix counts endpoints whose path starts with prefix.
func (d *Database) CountPrefix(prefix Path) int { return d.store.CountPrefix(prefix) }

// GetPrefix returns every (path, value) pair under prefix.
func (d *Database) GetPrefix(prefix Path) []Endpoint { return d.store.GetPrefix(prefix) }

// ListPrefix lists every indexed path under prefix.
func (d *Database) ListPrefix(prefix Path) []Path { return d.store.ListPrefix(prefix) }

// Query runs a wildcard pattern query via the index layer.
func (d *Database) Query(pattern Path) []Endpoint { return d.store.Query(pattern) }

// Flush forces KV durability and drains the index worker.
func (d *Database) Flush() error { return d.store.Flush() }

// Stats exposes the index worker's counters.
func (d *Database) Stats() Stats { return d.store.Stats() }

// Reconstruct folds every endpoint under prefix into a nested entity.
func (d *Database) Reconstruct(prefix Path) (Entity, error) {
	return entity.Reconstruct(prefix, d.store.GetPrefix(prefix))
}

// Flatten is the inverse of Reconstruct.
func (d *Database) Flatten(prefix Path, e Entity) ([]Endpoint, error) {
	return entity.Flatten(prefix, e)
}

// RunQuery parses and evaluates a query-language program.
func (d *Database) RunQuery(src string) (Value, error) {
	q, err := ql.Parse(src)
	if err != nil {
		return Value{}, err
	}
	return d.eval.Run(q)
}
