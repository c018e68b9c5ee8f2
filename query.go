package statues

// ProbOf returns the probability that n takes the value v.
func ProbOf[P Prob[P]](n Node[P], v any) (P, error) {
	l, err := Eval(n)
	if err != nil {
		var zero P
		return zero, err
	}
	return l.WeightOf(v), nil
}

// ProbTrue returns the probability that the boolean node n is true. Any
// non-boolean value in its support is an evaluation error.
func ProbTrue[P Prob[P]](n Node[P]) (P, error) {
	l, err := Eval(n)
	if err != nil {
		var zero P
		return zero, err
	}
	return leafTrue(l)
}

func leafTrue[P Prob[P]](l *Leaf[P]) (P, error) {
	var p P
	for i, v := range l.d.vals {
		b, ok := v.(bool)
		if !ok {
			var zero P
			return zero, evaluationf("found <%T> value although <bool> is expected", v)
		}
		if b {
			p = l.d.ps[i]
		}
	}
	return p, nil
}

// ProbTrueFloat is ProbTrue converted to float64.
func ProbTrueFloat[P Prob[P]](n Node[P]) (float64, error) {
	p, err := ProbTrue(n)
	if err != nil {
		return 0, err
	}
	return approx(p)
}

// IsTrue reports whether the boolean node n is certainly true.
func IsTrue[P Prob[P]](n Node[P]) (bool, error) {
	p, err := ProbTrue(n)
	if err != nil {
		return false, err
	}
	return p.Cmp(one[P]()) == 0, nil
}

// IsFeasible reports whether the boolean node n can be true.
func IsFeasible[P Prob[P]](n Node[P]) (bool, error) {
	p, err := ProbTrue(n)
	if err != nil {
		return false, err
	}
	return !p.IsZero(), nil
}

// Support returns the values of n with non-zero probability.
func Support[P Prob[P]](n Node[P]) ([]any, error) {
	l, err := Eval(n)
	if err != nil {
		return nil, err
	}
	return l.Values(), nil
}

// Equivalent reports whether a and b have the same distribution.
func Equivalent[P Prob[P]](a, b *Leaf[P]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, v := range a.d.vals {
		if !b.Contains(v) || b.WeightOf(v).Cmp(a.d.ps[i]) != 0 {
			return false
		}
	}
	return true
}

// WithProb returns the distribution of n revised so that cond holds with
// probability p, keeping the relative weights inside cond and inside its
// complement.
func WithProb[P Prob[P]](n, cond Node[P], p P) (*Leaf[P], error) {
	req, err := BoolProb(p)
	if err != nil {
		return nil, err
	}
	if req.Len() == 1 {
		if req.d.vals[0] == true {
			return EvalGiven(n, cond)
		}
		return EvalGiven(n, Not(cond))
	}
	whenTrue, err := EvalGiven(n, cond)
	if err != nil {
		return nil, err
	}
	whenFalse, err := EvalGiven(n, Not(cond))
	if err != nil {
		return nil, err
	}
	return Eval(If[P](req, whenTrue, whenFalse))
}
