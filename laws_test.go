package statues

import (
	"strings"
	"testing"
)

func TestOperationRegistry(t *testing.T) {
	r := NewOperationRegistry()

	concat := NewOperation("concat", Associative, addValues)
	if err := r.Register(concat); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(Operation{Name: "noop"}); err == nil {
		t.Error("Operation without function should be rejected")
	}
	if err := r.Register(NewOperation("", 0, addValues)); err == nil {
		t.Error("Operation without name should be rejected")
	}

	op, ok := r.Lookup("concat")
	if !ok || op.Name != "concat" {
		t.Fatalf("Lookup failed: %v %v", op, ok)
	}

	if _, err := r.Resolve("concat", Associative); err != nil {
		t.Errorf("concat declares Associative: %v", err)
	}
	_, err := r.Resolve("concat", Associative|Commutative)
	expectKind(t, err, KindConstruction)
	if !strings.Contains(err.Error(), "missing required law: Commutative") {
		t.Errorf("Unexpected message: %v", err)
	}

	_, err = r.Resolve("unknown", 0)
	expectKind(t, err, KindConstruction)

	if names := r.Names(); len(names) != 1 || names[0] != "concat" {
		t.Errorf("Names = %v", names)
	}

	t.Logf("✓ Registry resolves operations by name and law")
}

func TestDefaultRegistry(t *testing.T) {
	add, err := Resolve("add", Associative|Commutative)
	if err != nil {
		t.Fatalf("add should be registered: %v", err)
	}

	// resolved operations feed Times; sub has no law, so it is folded
	sum := must(Times[Rat](die6(), 2, add))
	expectRat(t, "P(7)", sum.WeightOf(7), 1, 6)

	if _, err := Resolve("sub", Associative); err == nil {
		t.Error("sub is not associative")
	}

	if _, ok := Lookup("max"); !ok {
		t.Error("max should be registered")
	}

	t.Logf("✓ Builtin operations registered")
}

func TestLaw_String(t *testing.T) {
	tests := []struct {
		law  Law
		want string
	}{
		{0, "none"},
		{Associative, "Associative"},
		{Associative | Commutative, "Associative+Commutative"},
	}
	for _, tt := range tests {
		if got := tt.law.String(); got != tt.want {
			t.Errorf("Law(%d) = %q, want %q", tt.law, got, tt.want)
		}
	}
}
