package statues

import "context"

// EvalConfig controls how Evaluate turns an enumeration into a Leaf.
type EvalConfig[P Prob[P]] struct {
	// Normalize divides every weight by the total. Required whenever a
	// condition discarded combinations.
	Normalize bool

	// Sort presents values in natural order when they have one; otherwise
	// first-seen order is kept.
	Sort bool

	// Evidence, when set, contributes observations and global conditions.
	Evidence *Evidence[P]
}

// DefaultEvalConfig normalizes and sorts, without evidence.
func DefaultEvalConfig[P Prob[P]]() EvalConfig[P] {
	return EvalConfig[P]{Normalize: true, Sort: true}
}

// collector accumulates weight per distinct value, keeping first-seen order.
// index is keyed by valueKey.
type collector[P Prob[P]] struct {
	index map[any]int
	vals  []any
	ps    []P
}

func newCollector[P Prob[P]]() *collector[P] {
	return &collector[P]{index: make(map[any]int)}
}

func (c *collector[P]) add(v any, w P) error {
	if !fastComparable(v) && !isComparable(v) {
		return evaluationf("value of type %T is not comparable", v)
	}
	k := valueKey(v)
	if i, ok := c.index[k]; ok {
		c.ps[i] = c.ps[i].Add(w)
		return nil
	}
	c.index[k] = len(c.vals)
	c.vals = append(c.vals, v)
	c.ps = append(c.ps, w)
	return nil
}

func fastComparable(v any) bool {
	switch v.(type) {
	case int, bool, string, float64, Tuple:
		return true
	}
	return false
}

func (c *collector[P]) leaf(normalize, sorting bool) (*Leaf[P], error) {
	total := sumOf(c.ps)
	if total.IsZero() {
		return nil, infeasiblef(errNoValue)
	}
	return buildLeaf(c.vals, c.ps, normalize, sorting)
}

// Evaluate computes the exact distribution of root.
//
// It runs the binding pre-pass once, drains root's enumeration and
// accumulates weight per value. A zero total is an ErrInfeasible error
// ("no value - impossible evidence"). ctx is checked between items; a
// canceled evaluation fails with ErrEvaluation wrapping ctx.Err().
func Evaluate[P Prob[P]](ctx context.Context, root Node[P], cfg EvalConfig[P]) (*Leaf[P], error) {
	c := newCollector[P]()
	if err := Enumerate(ctx, root, cfg.Evidence, c.add); err != nil {
		return nil, err
	}
	return c.leaf(cfg.Normalize, cfg.Sort)
}

// Eval is Evaluate with a background context and DefaultEvalConfig.
func Eval[P Prob[P]](root Node[P]) (*Leaf[P], error) {
	return Evaluate(context.Background(), root, DefaultEvalConfig[P]())
}

// EvalGiven is Eval conditioned on conds.
func EvalGiven[P Prob[P]](root Node[P], conds ...Node[P]) (*Leaf[P], error) {
	return Eval(Given(root, conds...))
}
