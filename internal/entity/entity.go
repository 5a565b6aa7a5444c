// Package entity implements entity reconstruction and its inverse,
// flatten. A reconstructed entity is a transient, never
// persisted view folding a flat endpoint set sharing a path prefix into
// a nested Object/Array tree.
package entity

import (
	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/queue"
	"github.com/killiandvcz/hyperion/internal/store"
	"github.com/killiandvcz/hyperion/internal/tree"
	"github.com/killiandvcz/hyperion/internal/value"
)

// Kind tags the variant held by an Entity: every value.Kind plus Object
// and Array.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindBinary
	KindReference
	KindObject
	KindArray
)

// ObjectEntry is one (key, value) pair of an Object entity, preserved
// in insertion order.
type ObjectEntry struct {
	Key   string
	Value Entity
}

// Entity is the reconstructed, never-persisted object/array/scalar view
// folded from a flat endpoint set.
type Entity struct {
	Kind   Kind
	Scalar value.Value
	Object []ObjectEntry
	Array  []Entity
}

// FromValue lifts a scalar Value into its Entity form.
func FromValue(v value.Value) Entity {
	return Entity{Kind: Kind(v.Kind), Scalar: v}
}

func (e Entity) objectGet(key string) (Entity, bool) {
	for _, entry := range e.Object {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return Entity{}, false
}

// slotKind classifies the working-tree node kind during reconstruction.
type slotKind int

const (
	slotObject slotKind = iota
	slotArray
	slotScalar
)

// slotData is the payload carried by each internal/tree node while
// folding endpoints into a nested structure: the edge label under which
// this node is attached (object key or array index), and, for leaves,
// the scalar value.
type slotData struct {
	kind    slotKind
	key     string
	index   int
	isIndex bool
	scalar  value.Value
}

// Reconstruct folds the endpoints of E (every endpoint whose path
// begins with prefix) into a nested Entity.
func Reconstruct(prefix path.Path, endpoints []store.Endpoint) (Entity, error) {
	if len(endpoints) == 0 {
		return Entity{}, herr.NotFound(prefix.String())
	}
	if len(endpoints) == 1 && endpoints[0].Path.Equal(prefix) {
		return FromValue(endpoints[0].Value), nil
	}

	root := tree.NewNode("", slotData{kind: slotObject})
	t := tree.New(root)

	for _, ep := range endpoints {
		if ep.Path.Equal(prefix) {
			// A value sits exactly at the prefix alongside descendants;
			// only the remaining-segment endpoints fold into the tree, so
			// a co-located scalar at the prefix itself is not addressable
			// through this structure and is skipped (the scalar-only case
			// is handled above).
			continue
		}
		if !ep.Path.StartsWith(prefix) {
			continue
		}
		remaining := ep.Path.Suffix(prefix.Len())
		if err := insertAt(t, root, remaining, ep.Value); err != nil {
			return Entity{}, err
		}
	}

	return convert(t, root), nil
}

func insertAt(t *tree.Tree[slotData], root *tree.Node[slotData], remaining path.Path, v value.Value) error {
	cur := root
	id := ""
	for i, seg := range remaining.Segments {
		last := i == len(remaining.Segments)-1

		var childID string
		var wantKind slotKind
		var data slotData
		switch seg.Kind {
		case path.Named:
			childID = id + "\x00n:" + seg.Name
			wantKind = slotObject
			data = slotData{kind: slotScalar, key: seg.Name}
		case path.ArrayIndex:
			childID = id + "\x00a:" + seg.String()
			wantKind = slotArray
			data = slotData{kind: slotScalar, index: seg.Index, isIndex: true}
		default:
			return herr.InvalidOperation("entity reconstruction: unsupported segment %s", seg.String())
		}

		if cur.Data().kind != wantKind {
			d := cur.Data()
			if wantKind == slotArray && d.kind == slotScalar && d.scalar.Kind == value.Null {
				// A Null slot upgrades to an Array when an index segment
				// lands on it.
				upgraded := tree.NewNode(cur.ID(), slotData{kind: slotArray, key: d.key, index: d.index, isIndex: d.isIndex})
				t.Replace(cur, upgraded)
				cur = upgraded
			} else {
				return herr.InvalidOperation(
					"entity reconstruction: type conflict at %s: expected %v, found %v",
					cur.ID(), wantKind, cur.Data().kind)
			}
		}

		child := t.Get(childID)
		if child == nil {
			if last {
				data.scalar = v
				child = tree.NewNode(childID, data)
			} else {
				// Look ahead to decide whether the next level is an
				// object or array container.
				nextKind := slotObject
				if i+1 < len(remaining.Segments) && remaining.Segments[i+1].Kind == path.ArrayIndex {
					nextKind = slotArray
				}
				child = tree.NewNode(childID, slotData{kind: nextKind, key: data.key, index: data.index, isIndex: data.isIndex})
			}
			t.Attach(child, cur)
		} else if last {
			if child.Data().kind != slotScalar {
				return herr.InvalidOperation("entity reconstruction: type conflict at %s", childID)
			}
			replacement := tree.NewNode(childID, slotData{kind: slotScalar, key: data.key, index: data.index, isIndex: data.isIndex, scalar: v})
			t.Replace(child, replacement)
			child = replacement
		}

		cur = child
		id = childID
	}
	return nil
}

// convert walks the working tree into the public Entity representation.
func convert(t *tree.Tree[slotData], n *tree.Node[slotData]) Entity {
	d := n.Data()
	switch d.kind {
	case slotScalar:
		return FromValue(d.scalar)
	case slotObject:
		children := n.Children()
		entries := make([]ObjectEntry, 0, len(children))
		for _, ch := range children {
			entries = append(entries, ObjectEntry{Key: ch.Data().key, Value: convert(t, ch)})
		}
		return Entity{Kind: KindObject, Object: entries}
	case slotArray:
		children := n.Children()
		maxIdx := -1
		for _, ch := range children {
			if ch.Data().index > maxIdx {
				maxIdx = ch.Data().index
			}
		}
		arr := make([]Entity, maxIdx+1)
		for i := range arr {
			arr[i] = Entity{Kind: KindNull, Scalar: value.NewNull()}
		}
		for _, ch := range children {
			arr[ch.Data().index] = convert(t, ch)
		}
		return Entity{Kind: KindArray, Array: arr}
	default:
		return Entity{Kind: KindNull, Scalar: value.NewNull()}
	}
}

type flattenItem struct {
	prefix path.Path
	e      Entity
}

// Flatten is the inverse of Reconstruct: it walks the entity
// breadth-first, using the internal/queue FIFO instead of recursion, and
// emits one endpoint per scalar leaf.
func Flatten(prefix path.Path, e Entity) ([]store.Endpoint, error) {
	q := queue.New[flattenItem]()
	q.Enqueue(flattenItem{prefix: prefix, e: e})

	var out []store.Endpoint
	for !q.IsEmpty() {
		item, ok := q.Dequeue()
		if !ok {
			break
		}
		switch item.e.Kind {
		case KindObject:
			for _, entry := range item.e.Object {
				q.Enqueue(flattenItem{prefix: item.prefix.Append(path.NamedSeg(entry.Key)), e: entry.Value})
			}
		case KindArray:
			for i, child := range item.e.Array {
				q.Enqueue(flattenItem{prefix: item.prefix.Append(path.IndexSeg(i)), e: child})
			}
		default:
			out = append(out, store.Endpoint{Path: item.prefix, Value: item.e.Scalar})
		}
	}
	return out, nil
}
