package ql

import "testing"

func TestParseAssignment(t *testing.T) {
	q, err := Parse(`{ users.u1.name = "ada" }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(q.Operations))
	}
	a, ok := q.Operations[0].(Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", q.Operations[0])
	}
	if a.Path.String() != "users.u1.name" {
		t.Fatalf("unexpected path: %s", a.Path.String())
	}
	lit, ok := a.Expr.Base.(LiteralPrimary)
	if !ok || lit.Value.Str != "ada" {
		t.Fatalf("unexpected assignment value: %+v", a.Expr.Base)
	}
}

func TestParseDelete(t *testing.T) {
	q, err := Parse(`{ delete users.u1 }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := q.Operations[0].(Delete)
	if !ok || d.Path.String() != "users.u1" {
		t.Fatalf("unexpected delete operation: %+v", q.Operations[0])
	}
}

func TestParseReturnWithWhereClause(t *testing.T) {
	q, err := Parse(`{ return users where their.active == true }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Return == nil {
		t.Fatal("expected a return expression")
	}
	if len(q.Return.Where) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(q.Return.Where))
	}
	cond := q.Return.Where[0]
	their, ok := cond.Left.(TheirPrimary)
	if !ok || their.Sub.String() != "active" {
		t.Fatalf("unexpected left primary: %+v", cond.Left)
	}
	if cond.Op != "==" {
		t.Fatalf("unexpected operator: %s", cond.Op)
	}
}

func TestParseWhereWithAndOr(t *testing.T) {
	q, err := Parse(`{ return users where their.age >= 18 && their.age < 65 || their.vip == true }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Return.Where) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(q.Return.Where))
	}
	if q.Return.Ops[0] != "" || q.Return.Ops[1] != "&&" || q.Return.Ops[2] != "||" {
		t.Fatalf("unexpected ops: %v", q.Return.Ops)
	}
}

func TestParseFunctionCall(t *testing.T) {
	q, err := Parse(`{ return count(users) }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := q.Return.Base.(CallPrimary)
	if !ok || call.Name != "count" || len(call.Args) != 1 {
		t.Fatalf("unexpected call primary: %+v", q.Return.Base)
	}
}

func TestParseTrailingInputRejected(t *testing.T) {
	if _, err := Parse(`{ return true } extra`); err == nil {
		t.Fatal("expected error for trailing input")
	}
}

func TestParseNumberLiterals(t *testing.T) {
	q, err := Parse(`{ a.b = 3 }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Operations[0].(Assignment).Expr.Base.(LiteralPrimary)
	if lit.Value.Int != 3 {
		t.Fatalf("expected integer literal 3, got %+v", lit.Value)
	}

	q2, err := Parse(`{ a.b = 3.5 }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit2 := q2.Operations[0].(Assignment).Expr.Base.(LiteralPrimary)
	if lit2.Value.Float64 != 3.5 {
		t.Fatalf("expected float literal 3.5, got %+v", lit2.Value)
	}
}
