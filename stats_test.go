package statues

import (
	"math"
	"testing"
)

func TestMoments(t *testing.T) {
	d := die6()

	mean := must(Mean[Rat](d))
	expectFloat(t, "mean", mean, 3.5)

	variance := must(Variance[Rat](d))
	expectFloat(t, "variance", variance, 35.0/12)

	std := must(Std[Rat](d))
	expectFloat(t, "std", std, math.Sqrt(35.0/12))

	expectRat(t, "exact mean", must(MeanExact[Rat](d)), 7, 2)

	_, err := MeanExact[Rat](must(FromVals[Rat](0.5, 1.5)))
	expectKind(t, err, KindEvaluation)

	_, err = Mean[Rat](must(FromVals[Rat]("a", "b")))
	expectKind(t, err, KindEvaluation)

	t.Logf("✓ Die: mean %.2f, variance %.4f", mean, variance)
}

func TestMode(t *testing.T) {
	mode := must(Mode[Rat](must(Dice[Rat](2, 6))))
	if len(mode) != 1 || mode[0] != 7 {
		t.Errorf("Mode of 2d6 should be [7], got %v", mode)
	}

	all := must(Mode[Rat](die6()))
	if len(all) != 6 {
		t.Errorf("Every face of a die is a mode, got %v", all)
	}

	t.Logf("✓ Mode of 2d6 = %v", mode)
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name string
		leaf *Leaf[Rat]
		want float64
	}{
		{"fair coin", coin(), 1.0},
		{"certain", must(Certain[Rat]("x")), 0},
		{"skewed", must(FromCounts[Rat](ValCount{"A", 2}, ValCount{"B", 1}, ValCount{"C", 1})), 1.5},
		{"uniform 8", must(Die[Rat](8)), 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := must(Entropy[Rat](tt.leaf))
			expectFloat(t, "entropy", h, tt.want)
		})
	}

	skewed := tests[2].leaf
	rel := must(RelativeEntropy[Rat](skewed))
	expectFloat(t, "relative entropy", rel, 1.5/math.Log2(3))
	red := must(Redundancy[Rat](skewed))
	expectFloat(t, "redundancy", red, 1-1.5/math.Log2(3))
	expectFloat(t, "relative entropy of certain", must(RelativeEntropy[Rat](tests[1].leaf)), 0)

	t.Logf("✓ Entropy in bits, relative entropy %.4f", rel)
}

func TestInformation(t *testing.T) {
	d := must(Die[Rat](8))

	expectFloat(t, "I(x=3)", must(InformationOf[Rat](d, 3)), 3)
	expectFloat(t, "I(x<=4)", must(Information[Rat](Le[Rat](d, Const[Rat](4)))), 1)

	_, err := InformationOf[Rat](d, 9)
	expectKind(t, err, KindDomain)

	_, err = Information[Rat](Gt[Rat](d, Const[Rat](8)))
	expectKind(t, err, KindDomain)

	t.Logf("✓ Information of events")
}

func TestMutualInformation(t *testing.T) {
	ball := must(FromCounts[Rat](ValCount{"Bx", 62}, ValCount{"Rx", 1}, ValCount{"Ry", 1}))
	color := Index[Rat](ball, 0)
	mark := Index[Rat](ball, 1)

	expectFloat(t, "H(ball)", must(Entropy[Rat](ball)), 0.23187232431271465)
	expectFloat(t, "H(color, mark)", must(JointEntropy(color, mark)), 0.23187232431271465)
	expectFloat(t, "I(color; mark)", must(MutualInformation(color, mark)), 0.08486507530476972)
	expectFloat(t, "H(color | color)", must(ConditionalEntropy(color, color)), 0)

	x, y := die6(), die6()
	expectFloat(t, "I(x; y)", must(MutualInformation[Rat](x, y)), 0)
	expectFloat(t, "H(x | y)", must(ConditionalEntropy[Rat](x, y)), math.Log2(6))

	_, err := JointEntropy[Rat]()
	expectKind(t, err, KindConstruction)

	t.Logf("✓ Shared variables bound in joint entropies")
}

func TestLikelihoodRatio(t *testing.T) {
	d := die6()
	even := Eq[Rat](Apply2[Rat](OpMod, d, Const[Rat](2)), Const[Rat](0))
	high := Gt[Rat](d, Const[Rat](3))

	// P(high | even) = 2/3, P(high | odd) = 1/3
	expectRat(t, "LR", must(LikelihoodRatio(high, even)), 2, 1)

	_, err := LikelihoodRatio(even, Ge[Rat](d, Const[Rat](1)))
	expectKind(t, err, KindInfeasible)

	// a two is impossible when the roll is odd
	_, err = LikelihoodRatio(EqConst[Rat](d, 2), even)
	expectKind(t, err, KindDomain)

	t.Logf("✓ Likelihood ratio")
}

func TestCalculateStatistics(t *testing.T) {
	stats := must(CalculateStatistics[Rat](die6()))

	expectFloat(t, "mean", stats.Mean, 3.5)
	expectFloat(t, "stddev", stats.Stddev, math.Sqrt(35.0/12))
	if stats.P50 != 3 || stats.P95 != 6 || stats.P99 != 6 {
		t.Errorf("Percentiles P50=%v P95=%v P99=%v, want 3, 6, 6", stats.P50, stats.P95, stats.P99)
	}

	t.Logf("✓ Statistics: mean %.2f, P50 %v, P99 %v", stats.Mean, stats.P50, stats.P99)
}
