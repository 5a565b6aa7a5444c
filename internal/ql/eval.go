package ql

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/killiandvcz/hyperion/internal/entity"
	"github.com/killiandvcz/hyperion/internal/herr"
	"github.com/killiandvcz/hyperion/internal/path"
	"github.com/killiandvcz/hyperion/internal/set"
	"github.com/killiandvcz/hyperion/internal/store"
	"github.com/killiandvcz/hyperion/internal/value"
)

// Storage is the subset of *store.Store the evaluator needs. Kept as an
// interface so evaluator tests can run against a fake.
type Storage interface {
	Get(p path.Path) (value.Value, error)
	Set(p path.Path, v value.Value) error
	Delete(p path.Path) error
	GetPrefix(prefix path.Path) []store.Endpoint
	CountPrefix(prefix path.Path) int
	Query(pattern path.Path) []store.Endpoint
}

// Evaluator executes parsed queries against a Storage.
type Evaluator struct {
	Store Storage
	Clock func() time.Time
	IDGen func() string
}

// NewEvaluator builds an Evaluator with the production clock and the
// google/uuid-backed id generator used by the uuid() builtin.
func NewEvaluator(s Storage) *Evaluator {
	return &Evaluator{
		Store: s,
		Clock: time.Now,
		IDGen: uuid.NewString,
	}
}

// Run executes every operation in source order, then evaluates the
// return expression (or Boolean true if absent).
func (e *Evaluator) Run(q *Query) (value.Value, error) {
	for _, op := range q.Operations {
		if err := e.applyOperation(op); err != nil {
			return value.Value{}, err
		}
	}
	if q.Return == nil {
		return value.NewBool(true), nil
	}
	return e.evalExpression(*q.Return)
}

func (e *Evaluator) applyOperation(op Operation) error {
	switch o := op.(type) {
	case Assignment:
		v, err := e.evalExpression(o.Expr)
		if err != nil {
			return err
		}
		return e.Store.Set(o.Path, v)
	case Delete:
		return e.Store.Delete(o.Path)
	default:
		return herr.InvalidOperation("unknown operation type")
	}
}

func (e *Evaluator) evalExpression(expr Expression) (value.Value, error) {
	if len(expr.Where) == 0 {
		return e.evalPrimary(expr.Base)
	}

	basePrimary, ok := expr.Base.(PathPrimary)
	if !ok {
		return value.Value{}, herr.InvalidOperation("where clause requires a path base")
	}
	base := basePrimary.Path

	var ids []string
	for i, cond := range expr.Where {
		hitIDs, err := e.evalCondition(base, cond)
		if err != nil {
			return value.Value{}, err
		}
		if i == 0 {
			ids = hitIDs
			continue
		}
		if expr.Ops[i] == "||" {
			ids = unionIDs(ids, hitIDs)
		} else {
			ids = intersectIDs(ids, hitIDs)
		}
	}

	entities := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		ep := base.Append(path.NamedSeg(id))
		endpoints := e.Store.GetPrefix(ep)
		ent, err := entity.Reconstruct(ep, endpoints)
		if err != nil {
			continue
		}
		entities = append(entities, ent)
	}

	text, err := serializeEntityArray(entities)
	if err != nil {
		return value.Value{}, herr.Serialization("serializing filtered entities: %v", err)
	}
	return value.NewString(text), nil
}

// evalCondition resolves one `their.X OP literal` (or mirrored) where
// condition by rewriting it into a wildcard query on base.*.X.
func (e *Evaluator) evalCondition(base path.Path, cond Condition) ([]string, error) {
	their, lit, mirrored, ok := splitTheirCondition(cond)
	if !ok {
		return nil, herr.InvalidOperation("where condition must reference their.X")
	}

	pattern := base.Append(path.Single).Append(their.Sub.Segments...)
	hits := e.Store.Query(pattern)

	basePos := base.Len()
	seen := map[string]bool{}
	var ids []string
	for _, ep := range hits {
		if ep.Path.Len() <= basePos {
			continue
		}
		seg := ep.Path.Segments[basePos]
		if seg.Kind != path.Named {
			continue
		}
		ok, err := compareValues(ep.Value, cond.Op, lit, mirrored)
		if err != nil {
			continue
		}
		if ok && !seen[seg.Name] {
			seen[seg.Name] = true
			ids = append(ids, seg.Name)
		}
	}
	return ids, nil
}

// splitTheirCondition identifies the their.X side and the literal side
// of a condition, reporting whether the comparison should be read
// mirrored (literal OP their.X rather than their.X OP literal).
func splitTheirCondition(cond Condition) (TheirPrimary, value.Value, bool, bool) {
	if t, ok := cond.Left.(TheirPrimary); ok {
		if l, ok := cond.Right.(LiteralPrimary); ok {
			return t, l.Value, false, true
		}
	}
	if t, ok := cond.Right.(TheirPrimary); ok {
		if l, ok := cond.Left.(LiteralPrimary); ok {
			return t, l.Value, true, true
		}
	}
	return TheirPrimary{}, value.Value{}, false, false
}

func compareValues(candidate value.Value, op string, lit value.Value, mirrored bool) (bool, error) {
	left, right := candidate, lit
	effectiveOp := op
	if mirrored {
		left, right = lit, candidate
		effectiveOp = mirrorOp(op)
	}

	switch effectiveOp {
	case "==":
		return left.Equal(right), nil
	case "!=":
		return !left.Equal(right), nil
	default:
		c, err := left.Compare(right)
		if err != nil {
			return false, err
		}
		switch effectiveOp {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		case ">=":
			return c >= 0, nil
		default:
			return false, herr.InvalidOperation("unknown comparison operator %q", op)
		}
	}
}

func mirrorOp(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	default:
		return op
	}
}

func (e *Evaluator) evalPrimary(p Primary) (value.Value, error) {
	switch v := p.(type) {
	case LiteralPrimary:
		return v.Value, nil
	case PathPrimary:
		return e.evalPath(v.Path)
	case TheirPrimary:
		return value.Value{}, herr.InvalidOperation("their.%s used outside a where clause", v.Sub.String())
	case CallPrimary:
		return e.evalCall(v)
	default:
		return value.Value{}, herr.InvalidOperation("unknown expression primary")
	}
}

// evalPath implements the path evaluation contract: a direct
// get, falling through to entity reconstruction on NotFound; if that
// also fails, the final error is NotFound on the original path.
func (e *Evaluator) evalPath(p path.Path) (value.Value, error) {
	v, err := e.Store.Get(p)
	if err == nil {
		return v, nil
	}
	if !herr.IsNotFound(err) {
		return value.Value{}, err
	}

	endpoints := e.Store.GetPrefix(p)
	ent, rerr := entity.Reconstruct(p, endpoints)
	if rerr != nil {
		return value.Value{}, herr.NotFound(p.String())
	}
	return entityToValue(ent)
}

func entityToValue(ent entity.Entity) (value.Value, error) {
	switch ent.Kind {
	case entity.KindObject, entity.KindArray:
		b, err := json.Marshal(entityToAny(ent))
		if err != nil {
			return value.Value{}, herr.Serialization("serializing entity: %v", err)
		}
		return value.NewString(string(b)), nil
	default:
		return ent.Scalar, nil
	}
}

func (e *Evaluator) evalCall(call CallPrimary) (value.Value, error) {
	switch call.Name {
	case "count":
		if len(call.Args) != 1 {
			return value.Value{}, herr.InvalidOperation("count() takes exactly one argument")
		}
		p, err := e.argAsPath(call.Args[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt(int64(e.Store.CountPrefix(p))), nil
	case "now":
		return value.NewString(e.Clock().UTC().Format(time.RFC3339)), nil
	case "uuid":
		return value.NewString(e.IDGen()), nil
	default:
		return value.Value{}, herr.InvalidOperation("unknown function %q", call.Name)
	}
}

func (e *Evaluator) argAsPath(p Primary) (path.Path, error) {
	switch v := p.(type) {
	case PathPrimary:
		return v.Path, nil
	case LiteralPrimary:
		if v.Value.Kind == value.String {
			return path.Parse(v.Value.Str)
		}
	}
	return path.Path{}, herr.InvalidOperation("expected a path argument")
}

// intersectIDs/unionIDs combine where-clause condition hits using an
// insertion-ordered set instead of a bare map, so left-to-right AND/OR
// combination keeps a deterministic entity order across conditions.
func intersectIDs(a, b []string) []string {
	return set.New(a...).Intersect(set.New(b...)).Values()
}

func unionIDs(a, b []string) []string {
	return set.New(a...).Union(set.New(b...)).Values()
}

// serializeEntityArray renders a where-filtered result set as "the array
// of entities, serialized as text" — always an array, even when exactly
// one entity survived the filter (see the one-entity-array scenario).
func serializeEntityArray(entities []entity.Entity) (string, error) {
	arr := make([]any, len(entities))
	for i, ent := range entities {
		arr[i] = entityToAny(ent)
	}
	b, err := json.Marshal(arr)
	return string(b), err
}

func entityToAny(ent entity.Entity) any {
	switch ent.Kind {
	case entity.KindObject:
		m := make(map[string]any, len(ent.Object))
		order := make([]string, 0, len(ent.Object))
		for _, entry := range ent.Object {
			m[entry.Key] = entityToAny(entry.Value)
			order = append(order, entry.Key)
		}
		return orderedObject{keys: order, values: m}
	case entity.KindArray:
		arr := make([]any, len(ent.Array))
		for i, child := range ent.Array {
			arr[i] = entityToAny(child)
		}
		return arr
	case entity.KindNull:
		return nil
	case entity.KindBoolean:
		return ent.Scalar.Bool
	case entity.KindInteger:
		return ent.Scalar.Int
	case entity.KindFloat:
		return ent.Scalar.Float64
	case entity.KindString:
		return ent.Scalar.Str
	default:
		// Binary and Reference have no native JSON shape; carry their
		// display form.
		return ent.Scalar.Display()
	}
}

// orderedObject marshals as a JSON object while preserving the entity's
// original insertion order, which encoding/json's map handling would
// otherwise not guarantee.
type orderedObject struct {
	keys   []string
	values map[string]any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
