package statues

import "math/big"

// DrawOptions select the kind of draw.
type DrawOptions struct {
	// Sorted makes the order of drawing irrelevant: values are tuples in
	// increasing order.
	Sorted bool
	// Replacement allows the same value to be drawn several times.
	Replacement bool
}

// Draw is the distribution of the tuples of n values drawn from x.
//
// Without replacement n may not exceed the size of the support. Sorted
// draws use a combinatorial weighting that generates each multiset once
// instead of every ordering; without replacement this shortcut is only
// exact for uniform distributions, so non-uniform ones are drawn in order
// and then sorted. Like FastMax, the result is a new Leaf and keeps no
// dependency on x.
func Draw[P Prob[P]](x Node[P], n int, opts DrawOptions) (*Leaf[P], error) {
	if n < 0 {
		return nil, domainf("draw requires a non-negative count, got %d", n)
	}
	l, err := Eval(x)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return Certain[P](Tuple{})
	}
	if opts.Replacement {
		if opts.Sorted {
			return selections(l, n, true)
		}
		return drawWithReplacement(l, n)
	}
	if n > l.Len() {
		return nil, domainf("number of values to draw without replacement (%d) exceeds the number of possible values (%d)", n, l.Len())
	}
	if !opts.Sorted {
		return drawWithoutReplacement(l, n)
	}
	if l.IsUniform() {
		return selections(l, n, false)
	}
	ordered, err := drawWithoutReplacement(l, n)
	if err != nil {
		return nil, err
	}
	return Eval(Map[P](func(v any) (any, error) { return v.(Tuple).Sorted(), nil }, ordered))
}

func drawWithReplacement[P Prob[P]](l *Leaf[P], n int) (*Leaf[P], error) {
	singles, err := Eval(Map[P](func(v any) (any, error) { return tupleOf([]any{v}), nil }, l))
	if err != nil {
		return nil, err
	}
	return Times[P](singles, n, OpAdd)
}

// drawWithoutReplacement weights each first value by its probability and
// recurses on the remaining values, renormalized.
func drawWithoutReplacement[P Prob[P]](l *Leaf[P], n int) (*Leaf[P], error) {
	if n == 0 {
		return Certain[P](Tuple{})
	}
	var vals []any
	var ws []P
	if n == 1 {
		for i, v := range l.d.vals {
			vals = append(vals, tupleOf([]any{v}))
			ws = append(ws, l.d.ps[i])
		}
		return buildLeaf(vals, ws, true, true)
	}
	for i, v := range l.d.vals {
		rest, err := l.without(i)
		if err != nil {
			return nil, err
		}
		sub, err := drawWithoutReplacement(rest, n-1)
		if err != nil {
			return nil, err
		}
		p := l.d.ps[i]
		for j, t := range sub.d.vals {
			vals = append(vals, t.(Tuple).prepend(v))
			ws = append(ws, p.Mul(sub.d.ps[j]))
		}
	}
	return buildLeaf(vals, ws, true, true)
}

// without returns the distribution of l conditioned on not being value i.
func (l *Leaf[P]) without(i int) (*Leaf[P], error) {
	vals := make([]any, 0, len(l.d.vals)-1)
	ps := make([]P, 0, len(l.d.vals)-1)
	for j, v := range l.d.vals {
		if j != i {
			vals = append(vals, v)
			ps = append(ps, l.d.ps[j])
		}
	}
	if len(vals) == 0 {
		return nil, constructionf("no value left after removing value %d", i)
	}
	return buildLeaf(vals, ps, true, false)
}

// selections weights every sorted n-combination of the support (with or
// without repetition) by the number of orderings it stands for,
// n!/(r1!·r2!·...) for runs of equal values, times the product of the
// element weights.
func selections[P Prob[P]](l *Leaf[P], n int, repeat bool) (*Leaf[P], error) {
	k := l.Len()
	var vals []any
	var ws []P
	perms := new(big.Int).MulRange(1, int64(n))
	var genErr error
	combinations(k, n, repeat, func(idx []int) bool {
		weight := new(big.Int).Set(perms)
		run := int64(0)
		prev := -1
		for _, i := range idx {
			if i != prev {
				prev = i
				run = 0
			}
			run++
			if run > 1 {
				weight.Quo(weight, big.NewInt(run))
			}
		}
		if !weight.IsInt64() {
			genErr = domainf("draw of %d values is too large", n)
			return false
		}
		w := fromInt[P](weight.Int64())
		tuple := make([]any, n)
		for j, i := range idx {
			tuple[j] = l.d.vals[i]
			w = w.Mul(l.d.ps[i])
		}
		vals = append(vals, tupleOf(tuple))
		ws = append(ws, w)
		return true
	})
	if genErr != nil {
		return nil, genErr
	}
	return buildLeaf(vals, ws, true, true)
}

// combinations calls fn with each non-decreasing (repeat) or strictly
// increasing index sequence of length n over 0..k-1, in lexicographic
// order, until fn returns false. The slice is reused.
func combinations(k, n int, repeat bool, fn func([]int) bool) {
	idx := make([]int, n)
	for i := range idx {
		if !repeat {
			idx[i] = i
		}
	}
	limit := func(i int) int {
		if repeat {
			return k - 1
		}
		return k - n + i
	}
	if !repeat && n > k {
		return
	}
	for {
		if !fn(idx) {
			return
		}
		i := n - 1
		for i >= 0 && idx[i] == limit(i) {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < n; j++ {
			if repeat {
				idx[j] = idx[i]
			} else {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}
