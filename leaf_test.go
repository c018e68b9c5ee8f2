package statues

import (
	"math/rand"
	"testing"
)

func TestNewLeaf_MergesDuplicatesAndNormalizes(t *testing.T) {
	l, err := NewLeaf([]any{1, 2, 1}, []Rat{NewRat(1, 1), NewRat(1, 1), NewRat(2, 1)}, true)
	if err != nil {
		t.Fatalf("NewLeaf failed: %v", err)
	}

	if l.Len() != 2 {
		t.Fatalf("Expected 2 values, got %d", l.Len())
	}
	expectRat(t, "P(1)", l.WeightOf(1), 3, 4)
	expectRat(t, "P(2)", l.WeightOf(2), 1, 4)
	expectRat(t, "P(3)", l.WeightOf(3), 0, 1)

	t.Logf("✓ Duplicates merged and normalized:\n%s", l)
}

func TestNewLeaf_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"no values", func() error { _, err := FromVals[Rat](); return err }},
		{"all weights zero", func() error {
			_, err := NewLeaf([]any{1, 2}, []Rat{{}, {}}, true)
			return err
		}},
		{"negative weight", func() error {
			_, err := NewLeaf([]any{1}, []Rat{NewRat(-1, 2)}, true)
			return err
		}},
		{"non-comparable value", func() error { _, err := FromVals[Rat]([]int{1}); return err }},
		{"length mismatch", func() error {
			_, err := NewLeaf([]any{1, 2}, []Rat{NewRat(1, 1)}, true)
			return err
		}},
		{"negative count", func() error { _, err := FromCounts[Rat](ValCount{"a", -1}); return err }},
		{"empty interval", func() error { _, err := Interval[Rat](3, 1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			expectKind(t, err, KindConstruction)
			t.Logf("✓ Rejected: %v", err)
		})
	}
}

func TestNewLeaf_Ordering(t *testing.T) {
	sorted := must(FromVals[Rat]("b", "a", "c"))
	if !sorted.Sorted() {
		t.Error("Strings should be sorted")
	}
	if got := sorted.Values(); got[0] != "a" || got[2] != "c" {
		t.Errorf("Expected a..c, got %v", got)
	}

	mixed := must(FromVals[Rat](2, "a", 1))
	if mixed.Sorted() {
		t.Error("Mixed values have no natural order")
	}
	if got := mixed.Values(); got[0] != 2 || got[1] != "a" || got[2] != 1 {
		t.Errorf("Expected first-seen order, got %v", got)
	}

	t.Logf("✓ Natural order when available, first-seen otherwise")
}

func TestNewLeaf_EqualNumbersMerge(t *testing.T) {
	l := must(FromVals[Rat](1, 1.0, int64(1), 2))
	if l.Len() != 2 {
		t.Fatalf("1, 1.0 and int64(1) are one value, got %v", l.Values())
	}
	if v := l.Values()[0]; v != 1 {
		t.Errorf("First representation should be kept, got %v (%T)", v, v)
	}
	expectRat(t, "P(1.0)", l.WeightOf(1.0), 3, 4)
	expectRat(t, "P(1.5)", l.WeightOf(1.5), 0, 1)

	// the collector merges them too
	half := must(Eval(Map[Rat](func(v any) (any, error) {
		if v.(int)%2 == 0 {
			return 1.0, nil
		}
		return 1, nil
	}, die6())))
	AssertCertain(t, Node[Rat](half), 1)

	sw := must(Switch[Rat](coin(), map[any]Node[Rat]{0.0: Const[Rat]("tails"), 1: Const[Rat]("heads")}))
	expectRat(t, "P(tails)", must(Eval(sw)).WeightOf("tails"), 1, 2)

	t.Logf("✓ Numbers equal under == are one value:\n%s", l)
}

func TestLeaf_CumulativeTables(t *testing.T) {
	d := die6()

	cum := d.Cumulative()
	if len(cum) != 7 || !cum[0].IsZero() {
		t.Fatalf("Cumulative should have 7 entries starting at 0, got %v", cum)
	}
	expectRat(t, "cum[3]", cum[3], 1, 2)
	expectRat(t, "cum[6]", cum[6], 1, 1)

	inv := d.InverseCumulative()
	expectRat(t, "inv[0]", inv[0], 1, 1)
	expectRat(t, "inv[5]", inv[5], 1, 6)
	if !inv[6].IsZero() {
		t.Errorf("inv[6] = %s, want 0", inv[6])
	}

	tests := []struct {
		v        any
		le, ge   Rat
		describe string
	}{
		{3, NewRat(1, 2), NewRat(2, 3), "inside support"},
		{3.5, NewRat(1, 2), NewRat(1, 2), "between values"},
		{0, NewRat(0, 1), NewRat(1, 1), "below support"},
		{7, NewRat(1, 1), NewRat(0, 1), "above support"},
	}
	for _, tt := range tests {
		le := must(d.PCumulative(tt.v))
		ge := must(d.PInverseCumulative(tt.v))
		if le.Cmp(tt.le) != 0 || ge.Cmp(tt.ge) != 0 {
			t.Errorf("%s: P(X<=%v)=%s P(X>=%v)=%s, want %s and %s",
				tt.describe, tt.v, le, tt.v, ge, tt.le, tt.ge)
		}
	}

	if _, err := must(FromVals[Rat](1, "a")).PCumulative(1); err == nil {
		t.Error("Cumulative probability of unordered values should fail")
	}

	t.Logf("✓ Cumulative tables consistent")
}

func TestLeaf_Sample(t *testing.T) {
	d := die6()
	rng := rand.New(rand.NewSource(1))

	counts := make(map[any]int)
	for i := 0; i < 6000; i++ {
		v, err := d.Sample(rng)
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		counts[v]++
	}

	for v := 1; v <= 6; v++ {
		if counts[v] < 800 || counts[v] > 1200 {
			t.Errorf("Value %d drawn %d times out of 6000", v, counts[v])
		}
	}
	if len(counts) != 6 {
		t.Errorf("Drew values outside the support: %v", counts)
	}

	t.Logf("✓ Inverse transform sampling: %v", counts)
}

func TestLeaf_CloneIsIndependent(t *testing.T) {
	d := die6()

	same := must(Eval(Add[Rat](d, d)))
	if same.Contains(7) {
		t.Error("d + d can only be even")
	}
	expectRat(t, "P(d+d=12)", same.WeightOf(12), 1, 6)

	indep := must(Eval(Add[Rat](d, d.Clone())))
	expectRat(t, "P(d+d'=7)", indep.WeightOf(7), 1, 6)
	expectRat(t, "P(d+d'=12)", indep.WeightOf(12), 1, 36)

	t.Logf("✓ Clone is a new random variable with the same table")
}

func TestConstructors(t *testing.T) {
	b := must(BoolProb(NewRat(1, 4)))
	expectRat(t, "P(true)", b.WeightOf(true), 1, 4)

	bern := must(Bernoulli(NewRat(3, 10)))
	expectRat(t, "P(1)", bern.WeightOf(1), 3, 10)

	for _, p := range []Rat{NewRat(3, 2), NewRat(-1, 2)} {
		_, err := Bernoulli(p)
		expectKind(t, err, KindDomain)
	}

	certain := must(BoolProb(NewRat(1, 1)))
	if certain.Len() != 1 || certain.Values()[0] != true {
		t.Errorf("BoolProb(1) should be certainly true, got %v", certain.Values())
	}

	_, err := Die[Rat](0)
	expectKind(t, err, KindDomain)

	counts := must(FromCounts[Rat](ValCount{"x", 3}, ValCount{"y", 1}))
	expectRat(t, "P(x)", counts.WeightOf("x"), 3, 4)

	c, err := Coerce[Rat](5)
	if err != nil {
		t.Fatalf("Coerce failed: %v", err)
	}
	AssertCertain(t, c, 5)

	if n, _ := Coerce[Rat](Node[Rat](counts)); n != Node[Rat](counts) {
		t.Error("Coerce should return nodes unchanged")
	}

	t.Logf("✓ Constructors validated")
}

func TestPoisson(t *testing.T) {
	p, err := Poisson[Float](2, 1e-9)
	if err != nil {
		t.Fatalf("Poisson failed: %v", err)
	}
	AssertNormalized(t, Node[Float](p), DefaultAssertionConfig())

	mean := must(Mean[Float](p))
	if mean < 1.999 || mean > 2.001 {
		t.Errorf("Mean = %f, want about 2", mean)
	}

	exact, err := Poisson[Rat](1, 1e-6)
	if err != nil {
		t.Fatalf("Poisson over Rat failed: %v", err)
	}
	if exact.Len() < 5 {
		t.Errorf("Expected at least 5 values, got %d", exact.Len())
	}

	_, err = Poisson[Float](-1, 1e-6)
	expectKind(t, err, KindDomain)

	t.Logf("✓ Poisson(2): %d values, mean %.6f", p.Len(), mean)
}

func TestDecimalDomain(t *testing.T) {
	half := must(NewDecimal("0.5"))
	c := must(Bernoulli(half))

	two := must(Eval(Add[Decimal](c, c.Clone())))
	quarter := must(NewDecimal("0.25"))
	if got := two.WeightOf(0); got.Cmp(quarter) != 0 {
		t.Errorf("P(0) = %s, want 0.25", got)
	}

	_, err := NewDecimal("abc")
	expectKind(t, err, KindDomain)

	t.Logf("✓ Decimal weights:\n%s", two)
}
