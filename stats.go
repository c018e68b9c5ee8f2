package statues

import (
	"math"
)

// Statistics summarizes a numeric distribution.
type Statistics struct {
	Mean   float64
	Stddev float64
	P50    any
	P95    any
	P99    any
}

// CalculateStatistics computes the moments and percentiles of n, whose
// values must be numbers.
func CalculateStatistics[P Prob[P]](n Node[P]) (Statistics, error) {
	l, err := Eval(n)
	if err != nil {
		return Statistics{}, err
	}
	mean, err := leafMean(l)
	if err != nil {
		return Statistics{}, err
	}
	variance, err := leafVariance(l, mean)
	if err != nil {
		return Statistics{}, err
	}
	sum, err := LeafSummary(l)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Mean:   mean,
		Stddev: math.Sqrt(variance),
		P50:    sum.P50,
		P95:    sum.P95,
		P99:    sum.P99,
	}, nil
}

// Mode returns the values of maximal probability, in display order.
func Mode[P Prob[P]](n Node[P]) ([]any, error) {
	l, err := Eval(n)
	if err != nil {
		return nil, err
	}
	best := l.d.ps[0]
	for _, p := range l.d.ps[1:] {
		if p.Cmp(best) > 0 {
			best = p
		}
	}
	var out []any
	for i, v := range l.d.vals {
		if l.d.ps[i].Cmp(best) == 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// weightedFloats returns the values of l as float64 with their float
// weights.
func weightedFloats[P Prob[P]](l *Leaf[P]) (xs, ws []float64, err error) {
	xs = make([]float64, len(l.d.vals))
	ws = make([]float64, len(l.d.vals))
	for i, v := range l.d.vals {
		_, f, _, ok := number(v)
		if !ok {
			return nil, nil, evaluationf("mean requires numeric values, found <%T>", v)
		}
		w, err := approx(l.d.ps[i])
		if err != nil {
			return nil, nil, err
		}
		xs[i], ws[i] = f, w
	}
	return xs, ws, nil
}

func leafMean[P Prob[P]](l *Leaf[P]) (float64, error) {
	xs, ws, err := weightedFloats(l)
	if err != nil {
		return 0, err
	}
	var sum, total float64
	for i, x := range xs {
		sum += x * ws[i]
		total += ws[i]
	}
	return sum / total, nil
}

func leafVariance[P Prob[P]](l *Leaf[P], mean float64) (float64, error) {
	xs, ws, err := weightedFloats(l)
	if err != nil {
		return 0, err
	}
	var sum, total float64
	for i, x := range xs {
		d := x - mean
		sum += d * d * ws[i]
		total += ws[i]
	}
	return sum / total, nil
}

// Mean is the expected value of n as a float64.
func Mean[P Prob[P]](n Node[P]) (float64, error) {
	l, err := Eval(n)
	if err != nil {
		return 0, err
	}
	return leafMean(l)
}

// MeanExact is the expected value of n in the probability domain. Values
// must be integers.
func MeanExact[P Prob[P]](n Node[P]) (P, error) {
	var sum P
	l, err := Eval(n)
	if err != nil {
		return sum, err
	}
	for i, v := range l.d.vals {
		x, _, isInt, ok := number(v)
		if !ok || !isInt {
			var zero P
			return zero, evaluationf("exact mean requires integer values, found <%T>", v)
		}
		sum = sum.Add(fromInt[P](x).Mul(l.d.ps[i]))
	}
	return sum, nil
}

// Variance is E[(X - E[X])²] as a float64.
func Variance[P Prob[P]](n Node[P]) (float64, error) {
	l, err := Eval(n)
	if err != nil {
		return 0, err
	}
	mean, err := leafMean(l)
	if err != nil {
		return 0, err
	}
	return leafVariance(l, mean)
}

// Std is the standard deviation of n.
func Std[P Prob[P]](n Node[P]) (float64, error) {
	v, err := Variance(n)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

func leafEntropy[P Prob[P]](l *Leaf[P]) (float64, error) {
	var h float64
	for _, p := range l.d.ps {
		f, err := approx(p)
		if err != nil {
			return 0, err
		}
		if f > 0 {
			h -= f * math.Log2(f)
		}
	}
	if h < 0 {
		h = 0
	}
	return h, nil
}

// Entropy is the Shannon entropy of n in bits.
func Entropy[P Prob[P]](n Node[P]) (float64, error) {
	l, err := Eval(n)
	if err != nil {
		return 0, err
	}
	return leafEntropy(l)
}

// RelativeEntropy is the entropy of n divided by the entropy of a uniform
// distribution over the same support, in [0, 1]. A certain distribution
// has relative entropy 0.
func RelativeEntropy[P Prob[P]](n Node[P]) (float64, error) {
	l, err := Eval(n)
	if err != nil {
		return 0, err
	}
	if l.Len() == 1 {
		return 0, nil
	}
	h, err := leafEntropy(l)
	if err != nil {
		return 0, err
	}
	return math.Min(1, h/math.Log2(float64(l.Len()))), nil
}

// Redundancy is 1 minus RelativeEntropy.
func Redundancy[P Prob[P]](n Node[P]) (float64, error) {
	r, err := RelativeEntropy(n)
	if err != nil {
		return 0, err
	}
	return 1 - r, nil
}

// InformationOf is the information, in bits, of n taking the value v.
func InformationOf[P Prob[P]](n Node[P], v any) (float64, error) {
	p, err := ProbOf(n, v)
	if err != nil {
		return 0, err
	}
	f, err := approx(p)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, domainf("no information from impossible value %s", formatValue(v))
	}
	return math.Max(0, -math.Log2(f)), nil
}

// Information is the information, in bits, of the boolean node cond being
// true.
func Information[P Prob[P]](cond Node[P]) (float64, error) {
	p, err := ProbTrue(cond)
	if err != nil {
		return 0, err
	}
	f, err := approx(p)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, domainf("no information from impossible event")
	}
	return math.Max(0, -math.Log2(f)), nil
}

// JointEntropy is the entropy of the joint distribution of nodes. Shared
// variables are bound, so JointEntropy(x, x) equals Entropy(x).
func JointEntropy[P Prob[P]](nodes ...Node[P]) (float64, error) {
	if len(nodes) == 0 {
		return 0, constructionf("joint entropy needs at least one distribution")
	}
	return Entropy(Joint(nodes...))
}

// ConditionalEntropy is H(x | given) = H(x, given) - H(given).
func ConditionalEntropy[P Prob[P]](x, given Node[P]) (float64, error) {
	hj, err := JointEntropy(x, given)
	if err != nil {
		return 0, err
	}
	hg, err := Entropy(given)
	if err != nil {
		return 0, err
	}
	return math.Max(0, hj-hg), nil
}

// MutualInformation is H(x) + H(y) - H(x, y).
func MutualInformation[P Prob[P]](x, y Node[P]) (float64, error) {
	hx, err := Entropy(x)
	if err != nil {
		return 0, err
	}
	hy, err := Entropy(y)
	if err != nil {
		return 0, err
	}
	hj, err := JointEntropy(x, y)
	if err != nil {
		return 0, err
	}
	return math.Max(0, hx+hy-hj), nil
}

// LikelihoodRatio is P(evidence | hypothesis) / P(evidence | not
// hypothesis). Both arguments are boolean nodes.
func LikelihoodRatio[P Prob[P]](evidence, hypothesis Node[P]) (P, error) {
	var zero P
	pTrue, err := ProbTrue(Given(evidence, hypothesis))
	if err != nil {
		return zero, err
	}
	pFalse, err := ProbTrue(Given(evidence, Not(hypothesis)))
	if err != nil {
		return zero, err
	}
	if pFalse.IsZero() {
		return zero, domainf("likelihood ratio is infinite: evidence is impossible without the hypothesis")
	}
	return quo(pTrue, pFalse)
}
