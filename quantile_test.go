package statues

import "testing"

func TestQuantile(t *testing.T) {
	d := die6()

	tests := []struct {
		name string
		q    Rat
		want any
	}{
		{"zero", NewRat(0, 1), 1},
		{"median", NewRat(1, 2), 3},
		{"just above median", NewRat(51, 100), 4},
		{"one", NewRat(1, 1), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := must(Quantile[Rat](d, tt.q))
			if got != tt.want {
				t.Errorf("Quantile(%s) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}

	_, err := Quantile[Rat](d, NewRat(3, 2))
	expectKind(t, err, KindDomain)

	_, err = Quantile[Rat](must(FromVals[Rat](1, "a")), NewRat(1, 2))
	expectKind(t, err, KindEvaluation)

	t.Logf("✓ Quantiles of a die")
}

func TestSummarize(t *testing.T) {
	s := must(Summarize[Rat](die6()))
	if s.Count != 6 || s.Min != 1 || s.Max != 6 {
		t.Errorf("Unexpected bounds: %+v", s)
	}
	if s.P50 != 3 || s.P99 != 6 {
		t.Errorf("P50=%v P99=%v, want 3 and 6", s.P50, s.P99)
	}
	expectFloat(t, "tail ratio", s.TailRatio, 2)

	words := must(Summarize[Rat](must(FromVals[Rat]("a", "b"))))
	expectFloat(t, "tail ratio of strings", words.TailRatio, 1)

	t.Logf("✓ Summary: %+v", s)
}
