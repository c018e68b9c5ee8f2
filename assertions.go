package statues

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// AssertionConfig contains tolerances for distribution assertions.
type AssertionConfig struct {
	// Absolute tolerance when comparing float approximations of weights.
	// Zero requires exact equality in the probability domain.
	Tolerance float64

	// Maximum number of mismatching values listed in a failure.
	MaxReported int
}

// DefaultAssertionConfig returns a tolerance suited to float64 weights.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		Tolerance:   1e-9,
		MaxReported: 10,
	}
}

// ExactAssertionConfig requires exact equality, for the Rat domain.
func ExactAssertionConfig() AssertionConfig {
	return AssertionConfig{MaxReported: 10}
}

func weightsMatch[P Prob[P]](got, want P, cfg AssertionConfig) bool {
	if got.Cmp(want) == 0 {
		return true
	}
	if cfg.Tolerance == 0 {
		return false
	}
	g, err1 := approx(got)
	w, err2 := approx(want)
	if err1 != nil || err2 != nil {
		return false
	}
	return math.Abs(g-w) <= cfg.Tolerance
}

// AssertProbability verifies P(n = v) equals want.
func AssertProbability[P Prob[P]](t *testing.T, n Node[P], v any, want P, cfg AssertionConfig) {
	t.Helper()

	got, err := ProbOf(n, v)
	if err != nil {
		t.Fatalf("Failed to evaluate distribution: %v", err)
	}
	if !weightsMatch(got, want, cfg) {
		t.Errorf("P(%s) = %s, want %s", formatValue(v), got, want)
		return
	}
	t.Logf("✓ P(%s) = %s", formatValue(v), got)
}

// AssertEquivalent verifies that n evaluates to the same table as want.
func AssertEquivalent[P Prob[P]](t *testing.T, n Node[P], want *Leaf[P], cfg AssertionConfig) {
	t.Helper()

	got, err := Eval(n)
	if err != nil {
		t.Fatalf("Failed to evaluate distribution: %v", err)
	}

	var failures []string
	report := func(format string, args ...any) {
		if len(failures) < cfg.MaxReported {
			failures = append(failures, fmt.Sprintf(format, args...))
		}
	}
	for i, v := range want.d.vals {
		if !got.Contains(v) {
			report("  %s: missing, want %s", formatValue(v), want.d.ps[i])
			continue
		}
		if g := got.WeightOf(v); !weightsMatch(g, want.d.ps[i], cfg) {
			report("  %s: %s, want %s", formatValue(v), g, want.d.ps[i])
		}
	}
	for i, v := range got.d.vals {
		if !want.Contains(v) {
			report("  %s: unexpected value with weight %s", formatValue(v), got.d.ps[i])
		}
	}

	if len(failures) > 0 {
		t.Errorf("Distributions differ:\n%s\ngot:\n%s", strings.Join(failures, "\n"), got)
		return
	}
	t.Logf("✓ Equivalent distributions over %d values", got.Len())
}

// AssertNormalized verifies the weights of n sum to one.
func AssertNormalized[P Prob[P]](t *testing.T, n Node[P], cfg AssertionConfig) {
	t.Helper()

	l, err := Eval(n)
	if err != nil {
		t.Fatalf("Failed to evaluate distribution: %v", err)
	}
	total := sumOf(l.d.ps)
	if !weightsMatch(total, one[P](), cfg) {
		t.Errorf("Weights sum to %s, want 1", total)
		return
	}
	t.Logf("✓ Normalized: %d values", l.Len())
}

// AssertCertain verifies n always takes the value v.
func AssertCertain[P Prob[P]](t *testing.T, n Node[P], v any) {
	t.Helper()

	l, err := Eval(n)
	if err != nil {
		t.Fatalf("Failed to evaluate distribution: %v", err)
	}
	if l.Len() != 1 || !valuesEqual(l.d.vals[0], v) {
		t.Errorf("Not certainly %s:\n%s", formatValue(v), l)
		return
	}
	t.Logf("✓ Certain: %s", formatValue(v))
}

// AssertErrorKind verifies err is a statues error of the given kind.
func AssertErrorKind(t *testing.T, err error, kind Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("Expected %s error, got %s: %v", kind, got, err)
	}
	t.Logf("✓ %s error: %v", kind, err)
}
