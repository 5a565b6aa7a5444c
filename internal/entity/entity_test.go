package entity

import (
	"sort"
	"testing"

	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/store"
	"github.com/killiandvcz/hyperion/internal/value"
)

func TestReconstructScalarAtPrefix(t *testing.T) {
	prefix := path.MustParse("users.u1.name")
	eps := []store.Endpoint{{Path: prefix, Value: value.NewString("ada")}}

	e, err := Reconstruct(prefix, eps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Kind != KindString || e.Scalar.Str != "ada" {
		t.Fatalf("unexpected entity: %+v", e)
	}
}

func TestReconstructObjectWithArray(t *testing.T) {
	prefix := path.MustParse("users.u1")
	eps := []store.Endpoint{
		{Path: path.MustParse("users.u1.name"), Value: value.NewString("ada")},
		{Path: path.MustParse("users.u1.tags[0]"), Value: value.NewString("admin")},
		{Path: path.MustParse("users.u1.tags[1]"), Value: value.NewString("owner")},
	}

	e, err := Reconstruct(prefix, eps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Kind != KindObject {
		t.Fatalf("expected object, got %v", e.Kind)
	}
	name, ok := e.objectGet("name")
	if !ok || name.Scalar.Str != "ada" {
		t.Fatalf("expected name=ada, got %+v (%v)", name, ok)
	}
	tags, ok := e.objectGet("tags")
	if !ok || tags.Kind != KindArray || len(tags.Array) != 2 {
		t.Fatalf("expected 2-element tags array, got %+v (%v)", tags, ok)
	}
	if tags.Array[0].Scalar.Str != "admin" || tags.Array[1].Scalar.Str != "owner" {
		t.Fatalf("unexpected tags contents: %+v", tags.Array)
	}
}

func TestReconstructSparseArrayFillsNull(t *testing.T) {
	prefix := path.MustParse("a")
	eps := []store.Endpoint{
		{Path: path.MustParse("a[2]"), Value: value.NewInt(7)},
	}
	e, err := Reconstruct(prefix, eps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Kind != KindArray || len(e.Array) != 3 {
		t.Fatalf("expected 3-element array, got %+v", e)
	}
	if e.Array[0].Kind != KindNull || e.Array[1].Kind != KindNull {
		t.Fatalf("expected null placeholders, got %+v", e.Array)
	}
	if e.Array[2].Scalar.Int != 7 {
		t.Fatalf("expected index 2 to hold 7, got %+v", e.Array[2])
	}
}

func TestReconstructNullSlotUpgradesToArray(t *testing.T) {
	prefix := path.MustParse("a")
	eps := []store.Endpoint{
		{Path: path.MustParse("a.b"), Value: value.NewNull()},
		{Path: path.MustParse("a.b[0]"), Value: value.NewInt(1)},
	}
	e, err := Reconstruct(prefix, eps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.objectGet("b")
	if !ok || b.Kind != KindArray {
		t.Fatalf("expected b upgraded to array, got %+v (%v)", b, ok)
	}
	if len(b.Array) != 1 || b.Array[0].Scalar.Int != 1 {
		t.Fatalf("unexpected array contents: %+v", b.Array)
	}
}

func TestReconstructTypeConflict(t *testing.T) {
	prefix := path.MustParse("a")
	eps := []store.Endpoint{
		{Path: path.MustParse("a.b"), Value: value.NewInt(1)},
		{Path: path.MustParse("a[0]"), Value: value.NewInt(2)},
	}
	if _, err := Reconstruct(prefix, eps); err == nil {
		t.Fatal("expected type conflict error mixing object and array segments")
	}
}

func TestReconstructMissingIsNotFound(t *testing.T) {
	if _, err := Reconstruct(path.MustParse("nope"), nil); err == nil {
		t.Fatal("expected error for empty endpoint set")
	}
}

func TestFlattenRoundTripsReconstruct(t *testing.T) {
	prefix := path.MustParse("users.u1")
	original := []store.Endpoint{
		{Path: path.MustParse("users.u1.name"), Value: value.NewString("ada")},
		{Path: path.MustParse("users.u1.tags[0]"), Value: value.NewString("admin")},
		{Path: path.MustParse("users.u1.tags[1]"), Value: value.NewString("owner")},
	}

	e, err := Reconstruct(prefix, original)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	flattened, err := Flatten(prefix, e)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(flattened) != len(original) {
		t.Fatalf("expected %d endpoints, got %d", len(original), len(flattened))
	}

	want := make([]string, len(original))
	for i, ep := range original {
		want[i] = ep.Path.String()
	}
	got := make([]string, len(flattened))
	for i, ep := range flattened {
		got[i] = ep.Path.String()
	}
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("round trip path mismatch: want %v, got %v", want, got)
		}
	}
}
