// Package bench supplies exported testing.B benchmark functions for
// primary-store writes, prefix scans and wildcard queries. The full
// benchmarking harness remains out of scope; these are the reusable
// benchmark bodies a caller's own Benchmark* functions can drive.
package bench

import (
	"strconv"
	"testing"

	"github.com/killiandvcz/hyperion/internal/kv"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/store"
	"github.com/killiandvcz/hyperion/internal/value"
)

// seed populates n sibling endpoints under "bench.items.<i>.name".
func seed(s *store.Store, n int) {
	for i := 0; i < n; i++ {
		p := path.MustParse("bench.items." + strconv.Itoa(i) + ".name")
		_ = s.Set(p, value.NewString("item-"+strconv.Itoa(i)))
	}
}

// Writes benchmarks sequential primary-store Set throughput.
func Writes(b *testing.B, n int) {
	s := store.Open(kv.NewMemEngine())
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seed(s, n)
	}
}

// PrefixScan benchmarks ListPrefix after seeding n endpoints and
// draining the index worker once.
func PrefixScan(b *testing.B, n int) {
	s := store.Open(kv.NewMemEngine())
	defer s.Close()
	seed(s, n)
	_ = s.Flush()

	prefix := path.MustParse("bench.items")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ListPrefix(prefix)
	}
}

// WildcardQuery benchmarks a single-wildcard Query after seeding n
// endpoints and draining the index worker once.
func WildcardQuery(b *testing.B, n int) {
	s := store.Open(kv.NewMemEngine())
	defer s.Close()
	seed(s, n)
	_ = s.Flush()

	pattern := path.MustParse("bench.items.*.name")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Query(pattern)
	}
}
