package statues

// FastMax is the distribution of the maximum of independent variables.
//
// Each argument is evaluated on its own and the result is computed from
// the cumulative tables, in time linear in the supports instead of their
// product. The arguments are treated as independent: a variable shared by
// two arguments is not bound across them, and the result is a new Leaf
// that keeps no dependency on the arguments. Use Max when that matters.
func FastMax[P Prob[P]](args ...Node[P]) (*Leaf[P], error) {
	return fastExtremum(args, true)
}

// FastMin is the minimum counterpart of FastMax.
func FastMin[P Prob[P]](args ...Node[P]) (*Leaf[P], error) {
	return fastExtremum(args, false)
}

func fastExtremum[P Prob[P]](args []Node[P], isMax bool) (*Leaf[P], error) {
	if len(args) == 0 {
		return nil, constructionf("extremum needs at least one argument")
	}
	acc, err := Eval(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	for i := len(args) - 2; i >= 0; i-- {
		a, err := Eval(args[i])
		if err != nil {
			return nil, err
		}
		if acc, err = extremum2(a, acc, isMax); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// extremum2 uses, for the maximum,
//
//	P(max = v) = P(A = v)·P(B <= v) + P(A < v)·P(B = v)
//
// and the mirrored formula with P(X >= v) for the minimum.
func extremum2[P Prob[P]](a, b *Leaf[P], isMax bool) (*Leaf[P], error) {
	bound := func(l *Leaf[P], v any) (P, error) {
		if isMax {
			return l.PCumulative(v)
		}
		return l.PInverseCumulative(v)
	}
	c := newCollector[P]()
	for _, l := range []*Leaf[P]{a, b} {
		for _, v := range l.d.vals {
			if _, seen := c.index[valueKey(v)]; seen {
				continue
			}
			pa, pb := a.WeightOf(v), b.WeightOf(v)
			ca, err := bound(a, v)
			if err != nil {
				return nil, err
			}
			cb, err := bound(b, v)
			if err != nil {
				return nil, err
			}
			w := pa.Mul(cb).Add(ca.Sub(pa).Mul(pb))
			if err := c.add(v, w); err != nil {
				return nil, err
			}
		}
	}
	return buildLeaf(c.vals, c.ps, false, true)
}
