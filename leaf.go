package statues

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// ValFreq pairs a value with a weight.
type ValFreq[P any] struct {
	Val  any
	Freq P
}

// ValCount pairs a value with an integer count.
type ValCount struct {
	Val   any
	Count int64
}

// leafData is the immutable storage shared by a Leaf and its clones.
type leafData[P Prob[P]] struct {
	vals   []any
	ps     []P
	sorted bool
	index  map[any]int // by valueKey

	once   sync.Once
	cum    []P
	inv    []P
	cumF   []float64
	cumErr error
}

// Leaf is an atomic distribution: distinct values with non-negative weights.
//
// A Leaf is immutable and safe for concurrent use. Two Leaves built
// separately are independent random variables even when their tables are
// equal; Clone is the way to get a new, independent variable with the same
// table.
type Leaf[P Prob[P]] struct {
	d *leafData[P]
}

// NewLeaf builds a Leaf from parallel value and weight slices.
//
// Duplicate values have their weights summed and zero weights are dropped;
// numbers equal in value (1 and 1.0) are duplicates.
// When all values share a natural order (numbers, strings, booleans, tuples
// of those) they are sorted; otherwise first-seen order is kept. With
// normalize set the weights are divided by their total.
func NewLeaf[P Prob[P]](vals []any, weights []P, normalize bool) (*Leaf[P], error) {
	if len(vals) != len(weights) {
		return nil, constructionf("%d values but %d weights", len(vals), len(weights))
	}
	var zero P
	index := make(map[any]int, len(vals))
	outV := make([]any, 0, len(vals))
	outP := make([]P, 0, len(vals))
	for i, v := range vals {
		if !isComparable(v) {
			return nil, constructionf("value of type %T is not comparable", v)
		}
		w := weights[i]
		if w.Cmp(zero) < 0 {
			return nil, constructionf("negative weight %s for value %s", w, formatValue(v))
		}
		k := valueKey(v)
		if j, seen := index[k]; seen {
			outP[j] = outP[j].Add(w)
			continue
		}
		index[k] = len(outV)
		outV = append(outV, v)
		outP = append(outP, w)
	}
	return buildLeaf(outV, outP, normalize, true)
}

// buildLeaf takes ownership of deduplicated vals and ps.
func buildLeaf[P Prob[P]](vals []any, ps []P, normalize, sorting bool) (*Leaf[P], error) {
	keptV, keptP := vals[:0:0], ps[:0:0]
	for i, p := range ps {
		if !p.IsZero() {
			keptV = append(keptV, vals[i])
			keptP = append(keptP, p)
		}
	}
	if len(keptV) == 0 {
		return nil, constructionf("cannot build a probability distribution with no value")
	}
	sorted := false
	if sorting {
		sorted = sortPairs(keptV, keptP)
	}
	if normalize {
		total := sumOf(keptP)
		for i, p := range keptP {
			q, err := quo(p, total)
			if err != nil {
				return nil, err
			}
			keptP[i] = q
		}
	}
	index := make(map[any]int, len(keptV))
	for i, v := range keptV {
		index[valueKey(v)] = i
	}
	return &Leaf[P]{d: &leafData[P]{vals: keptV, ps: keptP, sorted: sorted, index: index}}, nil
}

// sortPairs sorts vals by natural order, permuting ps alongside.
func sortPairs[P any](vals []any, ps []P) bool {
	perm := make([]int, len(vals))
	for i := range perm {
		perm[i] = i
	}
	if len(vals) == 1 {
		_, ok := compareValues(vals[0], vals[0])
		return ok
	}
	failed := false
	sort.SliceStable(perm, func(i, j int) bool {
		c, ok := compareValues(vals[perm[i]], vals[perm[j]])
		if !ok {
			failed = true
		}
		return c < 0
	})
	if failed {
		return false
	}
	sv := make([]any, len(vals))
	sp := make([]P, len(ps))
	for i, j := range perm {
		sv[i], sp[i] = vals[j], ps[j]
	}
	copy(vals, sv)
	copy(ps, sp)
	return true
}

// FromVals builds a Leaf where each occurrence of a value counts once, so a
// value's probability is its frequency in vals.
func FromVals[P Prob[P]](vals ...any) (*Leaf[P], error) {
	ws := make([]P, len(vals))
	for i := range ws {
		ws[i] = one[P]()
	}
	return NewLeaf(vals, ws, true)
}

// FromValFreqs builds a normalized Leaf from (value, weight) pairs.
func FromValFreqs[P Prob[P]](pairs ...ValFreq[P]) (*Leaf[P], error) {
	vals := make([]any, len(pairs))
	ws := make([]P, len(pairs))
	for i, vf := range pairs {
		vals[i], ws[i] = vf.Val, vf.Freq
	}
	return NewLeaf(vals, ws, true)
}

// FromCounts builds a normalized Leaf from (value, count) pairs.
func FromCounts[P Prob[P]](pairs ...ValCount) (*Leaf[P], error) {
	vals := make([]any, len(pairs))
	ws := make([]P, len(pairs))
	for i, vc := range pairs {
		if vc.Count < 0 {
			return nil, constructionf("negative count %d for value %s", vc.Count, formatValue(vc.Val))
		}
		vals[i], ws[i] = vc.Val, fromInt[P](vc.Count)
	}
	return NewLeaf(vals, ws, true)
}

// Certain returns a Leaf holding v with probability one.
func Certain[P Prob[P]](v any) (*Leaf[P], error) {
	return NewLeaf([]any{v}, []P{one[P]()}, false)
}

// Coerce returns v itself when it is a node, else a certain Leaf holding v.
func Coerce[P Prob[P]](v any) (Node[P], error) {
	if n, ok := v.(Node[P]); ok {
		return n, nil
	}
	return Certain[P](v)
}

// Interval is the uniform distribution over the integers from..to.
func Interval[P Prob[P]](from, to int) (*Leaf[P], error) {
	if to < from {
		return nil, constructionf("empty interval [%d, %d]", from, to)
	}
	vals := make([]any, 0, to-from+1)
	for v := from; v <= to; v++ {
		vals = append(vals, v)
	}
	return FromVals[P](vals...)
}

// Die is the uniform distribution over 1..sides.
func Die[P Prob[P]](sides int) (*Leaf[P], error) {
	if sides <= 0 {
		return nil, domainf("die needs a positive number of sides, got %d", sides)
	}
	return Interval[P](1, sides)
}

func binaryLeaf[P Prob[P]](v1, v2 any, p P) (*Leaf[P], error) {
	if err := checkProb(p); err != nil {
		return nil, err
	}
	return buildLeaf([]any{v1, v2}, []P{p, one[P]().Sub(p)}, false, true)
}

// BoolProb is the boolean distribution true with probability p.
func BoolProb[P Prob[P]](p P) (*Leaf[P], error) {
	return binaryLeaf(true, false, p)
}

// Bernoulli gives 1 with probability p and 0 otherwise.
func Bernoulli[P Prob[P]](p P) (*Leaf[P], error) {
	return binaryLeaf(1, 0, p)
}

// Poisson approximates the Poisson distribution of the given mean by the
// finite set of values whose probability is at least precision. Weights are
// computed in float64 and converted with the domain's FloatConverter.
func Poisson[P Prob[P]](mean, precision float64) (*Leaf[P], error) {
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, domainf("poisson mean must be positive and finite, got %v", mean)
	}
	var vals []any
	var ws []P
	p := math.Exp(-mean)
	for v := 0; p >= precision || float64(v) <= mean; v++ {
		if p >= precision {
			w, err := fromFloat[P](p)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
			ws = append(ws, w)
		}
		p = p * mean / float64(v+1)
	}
	return NewLeaf(vals, ws, true)
}

// Clone returns a new independent random variable with the same table.
func (l *Leaf[P]) Clone() *Leaf[P] { return &Leaf[P]{d: l.d} }

// Len returns the size of the support.
func (l *Leaf[P]) Len() int { return len(l.d.vals) }

// Values returns the support in display order.
func (l *Leaf[P]) Values() []any { return append([]any(nil), l.d.vals...) }

// Weights returns the weights in display order.
func (l *Leaf[P]) Weights() []P { return append([]P(nil), l.d.ps...) }

// Each calls fn for every (value, weight) pair until fn returns false.
func (l *Leaf[P]) Each(fn func(v any, p P) bool) {
	for i, v := range l.d.vals {
		if !fn(v, l.d.ps[i]) {
			return
		}
	}
}

// Sorted reports whether the values are in natural order.
func (l *Leaf[P]) Sorted() bool { return l.d.sorted }

// WeightOf returns the weight of v, zero when v is not in the support.
func (l *Leaf[P]) WeightOf(v any) P {
	if !isComparable(v) {
		var zero P
		return zero
	}
	if i, ok := l.d.index[valueKey(v)]; ok {
		return l.d.ps[i]
	}
	var zero P
	return zero
}

// Contains reports whether v is in the support.
func (l *Leaf[P]) Contains(v any) bool {
	if !isComparable(v) {
		return false
	}
	_, ok := l.d.index[valueKey(v)]
	return ok
}

// IsUniform reports whether every value has the same weight.
func (l *Leaf[P]) IsUniform() bool {
	p0 := l.d.ps[0]
	for _, p := range l.d.ps[1:] {
		if p.Cmp(p0) != 0 {
			return false
		}
	}
	return true
}

func (l *Leaf[P]) tables() {
	d := l.d
	d.once.Do(func() {
		n := len(d.ps)
		d.cum = make([]P, n+1)
		d.inv = make([]P, n+1)
		var acc P
		for i, p := range d.ps {
			acc = acc.Add(p)
			d.cum[i+1] = acc
		}
		rest := acc
		for i, p := range d.ps {
			d.inv[i] = rest
			rest = rest.Sub(p)
		}
		var zero P
		d.inv[n] = zero
		d.cumF = make([]float64, n+1)
		for i, c := range d.cum {
			f, err := approx(c)
			if err != nil {
				d.cumErr = err
				d.cumF = nil
				break
			}
			d.cumF[i] = f
		}
	})
}

// Cumulative returns the prefix sums of the weights in value order. It has
// Len()+1 entries and starts with zero.
func (l *Leaf[P]) Cumulative() []P {
	l.tables()
	return append([]P(nil), l.d.cum...)
}

// InverseCumulative returns, at index i, the total weight of values i and
// after. It has Len()+1 entries and ends with zero.
func (l *Leaf[P]) InverseCumulative() []P {
	l.tables()
	return append([]P(nil), l.d.inv...)
}

func (l *Leaf[P]) requireOrder(v any) error {
	if !l.d.sorted {
		return evaluationf("cumulative probability requires ordered values")
	}
	if _, ok := compareValues(l.d.vals[0], v); !ok {
		return evaluationf("value %s has no order with the distribution values", formatValue(v))
	}
	return nil
}

// PCumulative returns P(X <= v). v need not be in the support.
func (l *Leaf[P]) PCumulative(v any) (P, error) {
	if err := l.requireOrder(v); err != nil {
		var zero P
		return zero, err
	}
	l.tables()
	vals := l.d.vals
	i := sort.Search(len(vals), func(i int) bool {
		c, _ := compareValues(vals[i], v)
		return c > 0
	})
	return l.d.cum[i], nil
}

// PInverseCumulative returns P(X >= v). v need not be in the support.
func (l *Leaf[P]) PInverseCumulative(v any) (P, error) {
	if err := l.requireOrder(v); err != nil {
		var zero P
		return zero, err
	}
	l.tables()
	vals := l.d.vals
	i := sort.Search(len(vals), func(i int) bool {
		c, _ := compareValues(vals[i], v)
		return c >= 0
	})
	return l.d.inv[i], nil
}

// Sample draws one value by inverse transform over the cumulative table.
func (l *Leaf[P]) Sample(rng *rand.Rand) (any, error) {
	l.tables()
	if l.d.cumErr != nil {
		return nil, l.d.cumErr
	}
	cum := l.d.cumF[1:]
	u := rng.Float64() * l.d.cumF[len(l.d.cumF)-1]
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > u })
	if i == len(cum) {
		i--
	}
	return l.d.vals[i], nil
}

// String renders the distribution with DefaultFormatConfig, using
// fractions for the Rat domain.
func (l *Leaf[P]) String() string {
	cfg := DefaultFormatConfig()
	var zero P
	if _, exact := any(zero).(Rat); exact {
		cfg.Kind = DisplayFraction
	}
	s, err := Format(l, cfg)
	if err != nil {
		return err.Error()
	}
	return s
}

// children exposes node-valued values so a Flatten over this Leaf shares
// bindings with the rest of the graph.
func (l *Leaf[P]) children() []Node[P] {
	var out []Node[P]
	for _, v := range l.d.vals {
		if n, ok := v.(Node[P]); ok {
			out = append(out, n)
		}
	}
	return out
}

func (l *Leaf[P]) enumerate(_ *pass[P], k yieldFunc[P]) error {
	for i, v := range l.d.vals {
		if err := k(v, l.d.ps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Leaf[P]) sampleRaw(ps *pass[P]) (any, error) {
	return l.Sample(ps.rng)
}
