package statues

// Times composes n independent copies of the distribution of x with op.
//
// When op declares the Associative law the composition uses binary
// doubling: the n/2-fold result is combined with an independent clone of
// itself, plus one more copy of x when n is odd, so only O(log n)
// evaluations are needed. Other operations are folded left to right, one
// evaluation per copy. n must be at least 1.
//
// The result is a new Leaf; it shares no variable with x.
func Times[P Prob[P]](x Node[P], n int, op Operation) (*Leaf[P], error) {
	if n <= 0 {
		return nil, domainf("times requires a strictly positive integer, got %d", n)
	}
	l, err := Eval(x)
	if err != nil {
		return nil, err
	}
	if !op.Laws.Has(Associative) {
		return timesFold(l, n, op)
	}
	return timesDoubling(l, n, op)
}

func timesDoubling[P Prob[P]](l *Leaf[P], n int, op Operation) (*Leaf[P], error) {
	if n == 1 {
		return l.Clone(), nil
	}
	half, err := timesDoubling(l, n/2, op)
	if err != nil {
		return nil, err
	}
	res := Apply2[P](op, half, half.Clone())
	if n%2 == 1 {
		res = Apply2[P](op, res, l)
	}
	return Eval(res)
}

func timesFold[P Prob[P]](l *Leaf[P], n int, op Operation) (*Leaf[P], error) {
	acc := l.Clone()
	for i := 1; i < n; i++ {
		next, err := Eval(Apply2[P](op, acc, l.Clone()))
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// Binom is the number of successes among n independent trials of
// probability p.
func Binom[P Prob[P]](n int, p P) (*Leaf[P], error) {
	b, err := Bernoulli(p)
	if err != nil {
		return nil, err
	}
	return Times[P](b, n, OpAdd)
}

// Dice is the total of n independent dice with the given number of sides.
func Dice[P Prob[P]](n, sides int) (*Leaf[P], error) {
	d, err := Die[P](sides)
	if err != nil {
		return nil, err
	}
	return Times[P](d, n, OpAdd)
}

// DiceSeq is the distribution of the tuples of n independent dice, in
// throw order or, with sorted set, in increasing order.
func DiceSeq[P Prob[P]](n, sides int, sorted bool) (*Leaf[P], error) {
	d, err := Die[P](sides)
	if err != nil {
		return nil, err
	}
	return Draw[P](d, n, DrawOptions{Sorted: sorted, Replacement: true})
}
