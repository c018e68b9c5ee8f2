package statues

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSwitch(t *testing.T) {
	x := die6()
	parity := Apply2[Rat](OpMod, x, Const[Rat](2))

	sw, err := Switch(parity, map[any]Node[Rat]{
		0: Const[Rat]("even"),
		1: Const[Rat]("odd"),
	})
	if err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	l := must(Eval(sw))
	expectRat(t, "P(even)", l.WeightOf("even"), 1, 2)

	missing := must(Switch[Rat](x, map[any]Node[Rat]{1: Const[Rat]("one")}))
	_, err = Eval(missing)
	expectKind(t, err, KindEvaluation)
	if !strings.Contains(err.Error(), "missing value 2 in table") {
		t.Errorf("Unexpected message: %v", err)
	}

	def := must(SwitchDefault[Rat](x, map[any]Node[Rat]{1: Const[Rat]("one")}, Const[Rat]("other")))
	l = must(Eval(def))
	expectRat(t, "P(other)", l.WeightOf("other"), 5, 6)

	_, err = Switch[Rat](nil, nil)
	expectKind(t, err, KindConstruction)

	t.Logf("✓ Switch dispatches, reports misses and falls back")
}

func TestIf_SharesDiscriminant(t *testing.T) {
	x := die6()
	big := Gt[Rat](x, Const[Rat](3))

	// the chosen branch sees the same x as the condition
	n := If(big, Sub[Rat](x, Const[Rat](3)), Node[Rat](x))
	l := must(Eval(n))
	for v := 1; v <= 3; v++ {
		expectRat(t, "P(v)", l.WeightOf(v), 1, 3)
	}
	if l.Len() != 3 {
		t.Errorf("Expected values 1..3, got %v", l.Values())
	}

	t.Logf("✓ If branches bound to the condition:\n%s", l)
}

func TestGiven(t *testing.T) {
	x := die6()

	l := must(EvalGiven[Rat](x, Le[Rat](x, Const[Rat](4)), Ge[Rat](x, Const[Rat](2))))
	if l.Len() != 3 {
		t.Fatalf("Expected 2..4, got %v", l.Values())
	}
	expectRat(t, "P(3)", l.WeightOf(3), 1, 3)

	_, err := EvalGiven[Rat](x, Add[Rat](x, Const[Rat](1)))
	expectKind(t, err, KindEvaluation)

	t.Logf("✓ Conjunction of guards, non-boolean guard rejected")
}

func TestJoint(t *testing.T) {
	c := coin()

	same := must(Eval(Joint[Rat](c, c)))
	if same.Len() != 2 || !same.Contains(MustTuple(0, 0)) || !same.Contains(MustTuple(1, 1)) {
		t.Errorf("Joint(c, c) should be (0,0) and (1,1), got %v", same.Values())
	}

	indep := must(Eval(Joint[Rat](c, c.Clone())))
	expectRat(t, "P((0,1))", indep.WeightOf(MustTuple(0, 1)), 1, 4)

	first := must(Eval(Index(Joint[Rat](c, Const[Rat]("k")), 1)))
	AssertCertain(t, Node[Rat](first), "k")

	t.Logf("✓ Joint builds tuples:\n%s", indep)
}

func TestMapN(t *testing.T) {
	a, b, c := coin(), coin(), coin()
	count := MapN[Rat](func(vs []any) (any, error) {
		n := 0
		for _, v := range vs {
			n += v.(int)
		}
		return n, nil
	}, a, b, c)

	l := must(Eval(count))
	expectRat(t, "P(2)", l.WeightOf(2), 3, 8)

	fail := errors.New("boom")
	_, err := Eval(MapN[Rat](func([]any) (any, error) { return nil, fail }, a))
	if !errors.Is(err, fail) {
		t.Errorf("Expected function error, got %v", err)
	}

	t.Logf("✓ MapN over three coins")
}

func TestLogicalOperations(t *testing.T) {
	x := die6()
	low := Le[Rat](x, Const[Rat](2))
	high := Ge[Rat](x, Const[Rat](5))

	expectRat(t, "P(low|high)", must(ProbTrue(Or(low, high))), 2, 3)
	expectRat(t, "P(low&high)", must(ProbTrue(And(low, high))), 0, 1)
	expectRat(t, "P(not low)", must(ProbTrue(Not(low))), 2, 3)
	expectRat(t, "P(low^high)", must(ProbTrue(Apply2(OpXor, low, high))), 2, 3)

	_, err := Eval(And[Rat](x, low))
	expectKind(t, err, KindEvaluation)
	if !strings.Contains(err.Error(), "non-boolean object involved in AND logical operation") {
		t.Errorf("Unexpected message: %v", err)
	}

	expectRat(t, "P(x in {1,6})", must(ProbTrue(IsAnyOf[Rat](x, 1, 6))), 1, 3)
	expectRat(t, "P(x not in {1,6})", must(ProbTrue(IsNoneOf[Rat](x, 1, 6))), 2, 3)
	expectRat(t, "P(x == 2.0)", must(ProbTrue(EqConst[Rat](x, 2.0))), 1, 6)

	t.Logf("✓ Boolean algebra on distributions")
}

func TestArithmeticOperations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		a, b any
		want any
	}{
		{"add ints", OpAdd, 2, 3, 5},
		{"add strings", OpAdd, "a", "b", "ab"},
		{"add tuples", OpAdd, MustTuple(1), MustTuple(2), MustTuple(1, 2)},
		{"sub", OpSub, 2, 5, -3},
		{"mul floats", OpMul, 1.5, 2, 3.0},
		{"true division", OpDiv, 7, 2, 3.5},
		{"floor division", OpFloorDiv, -7, 2, -4},
		{"modulo sign of divisor", OpMod, -7, 3, 2},
		{"power", OpPow, 2, 10, 1024},
		{"min", OpMin, 4, 2, 2},
		{"max strings", OpMax, "a", "b", "b"},
		{"eq across kinds", OpEq, 1, 1.0, true},
		{"lt", OpLt, 1, 2, true},
		{"ge", OpGe, 1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op.Apply(tt.a, tt.b)
			if err != nil {
				t.Fatalf("%s failed: %v", tt.op, err)
			}
			if got != tt.want {
				t.Errorf("%v %s %v = %v (%T), want %v (%T)", tt.a, tt.op, tt.b, got, got, tt.want, tt.want)
			}
		})
	}

	for _, bad := range []struct {
		op   Operation
		a, b any
	}{
		{OpAdd, 1, "a"},
		{OpDiv, 1, 0},
		{OpMod, 1, 0},
		{OpLt, 1, "a"},
	} {
		if _, err := bad.op.Apply(bad.a, bad.b); err == nil {
			t.Errorf("%v %s %v should fail", bad.a, bad.op, bad.b)
		}
	}

	neg := must(Eval(Neg[Rat](die6())))
	if !neg.Contains(-6) {
		t.Errorf("Neg should give -6, got %v", neg.Values())
	}
	abs := must(Eval(Apply[Rat](OpAbs, neg)))
	if !abs.Contains(6) {
		t.Errorf("Abs should give 6, got %v", abs.Values())
	}

	t.Logf("✓ Built-in operations")
}

func TestArithmeticOverflow(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		a, b any
	}{
		{"add", OpAdd, math.MaxInt64, 1},
		{"sub", OpSub, math.MinInt64, 1},
		{"mul", OpMul, math.MaxInt64, 2},
		{"mul min by -1", OpMul, math.MinInt64, -1},
		{"power", OpPow, 2, 63},
		{"power of large base", OpPow, 3_037_000_500, 2},
		{"floor division", OpFloorDiv, math.MinInt64, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op.Apply(tt.a, tt.b)
			if err == nil {
				t.Fatalf("%v %s %v = %v, want overflow error", tt.a, tt.op, tt.b, got)
			}
			expectKind(t, err, KindEvaluation)
			if !strings.Contains(err.Error(), "integer overflow") {
				t.Errorf("Unexpected message: %v", err)
			}
		})
	}

	fits := []struct {
		op   Operation
		a, b any
		want any
	}{
		{OpPow, 2, 62, 1 << 62},
		{OpPow, -2, 63, math.MinInt64},
		{OpMul, math.MinInt64, 1, math.MinInt64},
		{OpAdd, math.MaxInt64, math.MinInt64, -1},
	}
	for _, f := range fits {
		got, err := f.op.Apply(f.a, f.b)
		if err != nil || got != f.want {
			t.Errorf("%v %s %v = %v, %v; want %v", f.a, f.op, f.b, got, err, f.want)
		}
	}

	// an overflow inside an expression fails the evaluation
	big := must(Certain[Rat](math.MaxInt64))
	_, err := Eval(Add[Rat](big, Const[Rat](1)))
	expectKind(t, err, KindEvaluation)

	t.Logf("✓ Integer arithmetic reports overflow: %v", err)
}

func TestReduceAndExactExtrema(t *testing.T) {
	_, err := Reduce[Rat](OpAdd)
	expectKind(t, err, KindConstruction)

	x, y := die6(), die6()
	m := must(Max[Rat](x, y))
	l := must(Eval(m))
	expectRat(t, "P(max=6)", l.WeightOf(6), 11, 36)

	same := must(Min[Rat](x, x))
	AssertEquivalent(t, same, x, ExactAssertionConfig())

	t.Logf("✓ Reduce and exact extrema keep dependencies")
}

func TestConst_PanicsOnNonComparable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Const should panic on a slice")
		}
	}()
	Const[Rat]([]int{1})
}
