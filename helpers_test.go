package statues

import (
	"math"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func die6() *Leaf[Rat] { return must(Die[Rat](6)) }

func coin() *Leaf[Rat] { return must(Bernoulli(NewRat(1, 2))) }

func expectRat(t *testing.T, what string, got Rat, num, den int64) {
	t.Helper()
	if got.Cmp(NewRat(num, den)) != 0 {
		t.Errorf("%s = %s, want %d/%d", what, got, num, den)
	}
}

func expectFloat(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %.12f, want %.12f", what, got, want)
	}
}

func expectKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}
	if KindOf(err) != kind {
		t.Fatalf("Expected %s error, got %v", kind, err)
	}
}
