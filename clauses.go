package statues

import "context"

// Clause is one guarded branch of a conditional probability table. A nil
// Cond marks the else branch.
type Clause[P Prob[P]] struct {
	Cond   Node[P]
	Result Node[P]
}

// When is the clause "if cond then result".
func When[P Prob[P]](cond, result Node[P]) Clause[P] {
	return Clause[P]{Cond: cond, Result: result}
}

// Else is the clause taken when no other guard holds.
func Else[P Prob[P]](result Node[P]) Clause[P] {
	return Clause[P]{Result: result}
}

// ClauseOptions tune Clauses.
type ClauseOptions[P Prob[P]] struct {
	// Prior, when set, computes the else branch so that the table's marginal
	// distribution equals Prior. Incompatible with an explicit else clause
	// and with AutoElse.
	Prior Node[P]

	// AutoElse makes the else branch uniform over every value appearing in
	// the clause results. Incompatible with an explicit else clause.
	AutoElse bool

	// NoCheck skips the disjointness and completeness checks.
	NoCheck bool
}

// clauseSet is a disjoint union of filters, one per guard.
type clauseSet[P Prob[P]] struct {
	conds    []Node[P]
	results  []Node[P]
	branches []Node[P]
}

// Clauses builds a conditional probability table from guarded clauses.
//
// Guards must be mutually exclusive and, unless an else branch is given or
// computed, cover every case. Both properties are checked here by exact
// evaluation unless opts.NoCheck is set. Results are evaluated once at
// construction, so a table does not share variables with its results.
// Guard leaves are assumed normalized.
func Clauses[P Prob[P]](opts ClauseOptions[P], clauses ...Clause[P]) (Node[P], error) {
	var conds []Node[P]
	var results []*Leaf[P]
	var elseResult Node[P]
	elseCount := 0
	for _, c := range clauses {
		if c.Result == nil {
			return nil, constructionf("clause without result")
		}
		if c.Cond == nil {
			elseCount++
			elseResult = c.Result
			continue
		}
		r, err := Eval(c.Result)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c.Cond)
		results = append(results, r)
	}
	switch {
	case elseCount > 1:
		return nil, constructionf("impossible to define more than one 'else' clause")
	case elseCount == 1 && opts.Prior != nil:
		return nil, constructionf("impossible to define together prior probabilities and 'else' clause")
	case elseCount == 1 && opts.AutoElse:
		return nil, constructionf("impossible to have auto-else and 'else' clause")
	case opts.AutoElse && opts.Prior != nil:
		return nil, constructionf("impossible to define together prior probabilities and auto-else")
	case len(conds) == 0 && elseCount == 0:
		return nil, constructionf("clause set without any clause")
	}
	if opts.AutoElse {
		auto, err := autoElse(results)
		if err != nil {
			return nil, err
		}
		elseResult = auto
	}

	check := !opts.NoCheck
	if check && len(conds) > 1 {
		if err := checkDisjoint(conds); err != nil {
			return nil, err
		}
	}
	var orConds Node[P] = Const[P](false)
	if len(conds) > 0 {
		orConds, _ = Reduce(OpOr, conds...)
	}

	if opts.Prior != nil {
		r, err := priorElse(opts.Prior, orConds, conds, results, check)
		if err != nil {
			return nil, err
		}
		elseResult = r
	} else if elseResult == nil && check {
		complete, err := IsTrue(orConds)
		if err != nil {
			return nil, err
		}
		if !complete {
			return nil, constructionf("incomplete clause set requires 'else' clause, auto-else or prior")
		}
	}

	cs := &clauseSet[P]{}
	for i, c := range conds {
		cs.add(c, results[i])
	}
	if elseResult != nil {
		r, err := Eval(elseResult)
		if err != nil {
			return nil, err
		}
		cs.add(Not(orConds), r)
	}
	return cs, nil
}

// CPT is Clauses with default options.
func CPT[P Prob[P]](clauses ...Clause[P]) (Node[P], error) {
	return Clauses(ClauseOptions[P]{}, clauses...)
}

func (cs *clauseSet[P]) add(cond Node[P], result *Leaf[P]) {
	cs.conds = append(cs.conds, cond)
	cs.results = append(cs.results, result)
	cs.branches = append(cs.branches, Given[P](result, cond))
}

func checkDisjoint[P Prob[P]](conds []Node[P]) error {
	return Enumerate(context.Background(), Joint(conds...), nil, func(v any, _ P) error {
		trues := 0
		for _, x := range v.(Tuple).Values() {
			b, err := guard(x)
			if err != nil {
				return err
			}
			if b {
				trues++
			}
		}
		if trues > 1 {
			return constructionf("clause conditions are not disjoint")
		}
		return nil
	})
}

func autoElse[P Prob[P]](results []*Leaf[P]) (*Leaf[P], error) {
	seen := make(map[any]bool)
	var vals []any
	for _, r := range results {
		for _, v := range r.d.vals {
			if k := valueKey(v); !seen[k] {
				seen[k] = true
				vals = append(vals, v)
			}
		}
	}
	return FromVals[P](vals...)
}

// priorElse solves prior(v) = sum_i P(cond_i) r_i(v) + P(no cond) e(v) for e.
func priorElse[P Prob[P]](prior, orConds Node[P], conds []Node[P], results []*Leaf[P], check bool) (*Leaf[P], error) {
	pTrue, err := ProbTrue(orConds)
	if err != nil {
		return nil, err
	}
	if check && pTrue.Cmp(one[P]()) == 0 {
		return nil, constructionf("forbidden to define prior probabilities for complete clause set")
	}
	pFalse := one[P]().Sub(pTrue)
	priorLeaf, err := Eval(prior)
	if err != nil {
		return nil, err
	}
	mix := newCollector[P]()
	for i, c := range conds {
		pc, err := ProbTrue(c)
		if err != nil {
			return nil, err
		}
		for j, v := range results[i].d.vals {
			if err := mix.add(v, pc.Mul(results[i].d.ps[j])); err != nil {
				return nil, err
			}
		}
	}
	var vals []any
	var ws []P
	seen := make(map[any]bool)
	consider := func(v any) error {
		k := valueKey(v)
		if seen[k] {
			return nil
		}
		seen[k] = true
		var condP P
		if i, ok := mix.index[k]; ok {
			condP = mix.ps[i]
		}
		e := priorLeaf.WeightOf(v).Sub(condP)
		var zero P
		if e.Cmp(zero) < 0 || e.Cmp(pFalse) > 0 {
			return domainf("prior probability of '%s' is %s, outside the range [ %s , %s ]",
				formatValue(v), priorLeaf.WeightOf(v), condP, condP.Add(pFalse))
		}
		vals = append(vals, v)
		ws = append(ws, e)
		return nil
	}
	for _, v := range priorLeaf.d.vals {
		if err := consider(v); err != nil {
			return nil, err
		}
	}
	for _, v := range mix.vals {
		if err := consider(v); err != nil {
			return nil, err
		}
	}
	return NewLeaf(vals, ws, true)
}

func (cs *clauseSet[P]) children() []Node[P] { return cs.branches }

func (cs *clauseSet[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	for _, b := range cs.branches {
		if err := ps.gen(b, k); err != nil {
			return err
		}
	}
	return nil
}

func (cs *clauseSet[P]) sampleRaw(ps *pass[P]) (any, error) {
	for i, c := range cs.conds {
		v, err := ps.sample(c)
		if err != nil {
			return nil, err
		}
		ok, err := guard(v)
		if err != nil {
			return nil, err
		}
		if ok {
			return ps.sample(cs.results[i])
		}
	}
	return nil, errReject
}
