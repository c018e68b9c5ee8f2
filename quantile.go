package statues

import "math"

// Quantile returns the smallest value v of n such that P(X <= v) >= q.
//
// The values of n must have a natural order. q is given in the probability
// domain and must lie in [0, 1]; Quantile(n, 0) is the smallest value.
func Quantile[P Prob[P]](n Node[P], q P) (any, error) {
	l, err := Eval(n)
	if err != nil {
		return nil, err
	}
	return leafQuantile(l, q)
}

func leafQuantile[P Prob[P]](l *Leaf[P], q P) (any, error) {
	if err := checkProb(q); err != nil {
		return nil, err
	}
	if !l.d.sorted {
		return nil, evaluationf("quantile requires ordered values")
	}
	l.tables()
	for i, c := range l.d.cum[1:] {
		if c.Cmp(q) >= 0 {
			return l.d.vals[i], nil
		}
	}
	// rounding in Float may leave the last prefix sum just under one
	return l.d.vals[len(l.d.vals)-1], nil
}

// Summary is a percentile snapshot of an ordered distribution.
//
// TailRatio compares the 99th percentile with the median. For a
// distribution concentrated around its median it stays close to 1; a ratio
// above 10 means the tail dominates and the mean is a poor summary.
type Summary struct {
	Count     int
	Min       any
	P50       any
	P95       any
	P99       any
	Max       any
	TailRatio float64
}

// Summarize evaluates n and returns its percentile snapshot.
func Summarize[P Prob[P]](n Node[P]) (Summary, error) {
	l, err := Eval(n)
	if err != nil {
		return Summary{}, err
	}
	return LeafSummary(l)
}

// LeafSummary returns the percentile snapshot of l.
func LeafSummary[P Prob[P]](l *Leaf[P]) (Summary, error) {
	s := Summary{
		Count: l.Len(),
		Min:   l.d.vals[0],
		Max:   l.d.vals[len(l.d.vals)-1],
	}
	for _, pc := range []struct {
		pct int64
		dst *any
	}{{50, &s.P50}, {95, &s.P95}, {99, &s.P99}} {
		q, err := Ratio[P](pc.pct, 100)
		if err != nil {
			return Summary{}, err
		}
		v, err := leafQuantile(l, q)
		if err != nil {
			return Summary{}, err
		}
		*pc.dst = v
	}
	s.TailRatio = tailRatio(s.P50, s.P99)
	return s, nil
}

// tailRatio is P99/P50 for numeric percentiles, 1 when undefined.
func tailRatio(p50, p99 any) float64 {
	_, median, _, ok1 := number(p50)
	_, tail, _, ok2 := number(p99)
	if !ok1 || !ok2 || median == 0 || math.IsNaN(median) {
		return 1.0
	}
	return tail / median
}
