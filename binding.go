package statues

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

// pass is the binding context of one evaluation.
//
// The pre-pass counts, for every node reachable from the root, how many
// references reach it in a first-visit traversal. A node referenced once is
// enumerated directly. A node referenced more than once is enumerated in
// bound mode: before each value is handed to its consumer, the value is
// recorded in bound, and any other reference pulled while that consumer
// runs sees exactly that value with unit weight. The entry is removed when
// the node's enumeration returns, whether it finished or failed.
//
// All transient state lives here, never on the nodes, so concurrent
// evaluations of one graph do not interfere.
type pass[P Prob[P]] struct {
	ctx      context.Context
	one      P
	refs     map[Node[P]]int
	allBound bool
	bound    map[Node[P]]any
	observed map[Node[P]]any

	// sampling state
	rng   *rand.Rand
	drawn map[Node[P]]any
}

// errReject aborts one sampling attempt whose guards were not satisfied.
var errReject = errors.New("statues: sample rejected")

func newPass[P Prob[P]](ctx context.Context, observed map[Node[P]]any, roots ...Node[P]) (*pass[P], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ps := &pass[P]{
		ctx:      ctx,
		one:      one[P](),
		refs:     make(map[Node[P]]int),
		bound:    make(map[Node[P]]any),
		observed: observed,
	}
	for _, r := range roots {
		if err := ps.register(r); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func (ps *pass[P]) register(n Node[P]) error {
	if n == nil {
		return constructionf("nil distribution in expression")
	}
	ps.refs[n]++
	if ps.refs[n] > 1 {
		return nil
	}
	if f, ok := n.(interface{ dynamicInner() bool }); ok && f.dynamicInner() {
		ps.allBound = true
	}
	for _, c := range n.children() {
		if err := ps.register(c); err != nil {
			return err
		}
	}
	return nil
}

// discover registers a node found while enumerating (an inner node of a
// Flatten). Static inner nodes are already known; dynamic ones run with
// allBound set.
func (ps *pass[P]) discover(n Node[P]) error {
	if _, known := ps.refs[n]; known {
		return nil
	}
	return ps.register(n)
}

func (ps *pass[P]) multi(n Node[P]) bool {
	return ps.allBound || ps.refs[n] > 1
}

// gen enumerates n under the binding protocol.
func (ps *pass[P]) gen(n Node[P], k yieldFunc[P]) error {
	if v, ok := ps.observed[n]; ok {
		return k(v, ps.one)
	}
	if !ps.multi(n) {
		return n.enumerate(ps, k)
	}
	if v, ok := ps.bound[n]; ok {
		return k(v, ps.one)
	}
	defer delete(ps.bound, n)
	return n.enumerate(ps, func(v any, w P) error {
		ps.bound[n] = v
		return k(v, w)
	})
}

// sample draws the value of n in the current world. Every node is drawn at
// most once per world, which is the sampling form of binding.
func (ps *pass[P]) sample(n Node[P]) (any, error) {
	if v, ok := ps.observed[n]; ok {
		return v, nil
	}
	if v, ok := ps.drawn[n]; ok {
		return v, nil
	}
	v, err := n.sampleRaw(ps)
	if err != nil {
		return nil, err
	}
	ps.drawn[n] = v
	return v, nil
}

// Enumerate runs the binding pre-pass from root and streams root's raw
// (value, weight) items to fn, without accumulation or normalization.
func Enumerate[P Prob[P]](ctx context.Context, root Node[P], ev *Evidence[P], fn func(v any, w P) error) error {
	root, observed := ev.apply(root)
	ps, err := newPass(ctx, observed, root)
	if err != nil {
		return err
	}
	return ps.gen(root, func(v any, w P) error {
		if err := ps.ctx.Err(); err != nil {
			return newError(KindEvaluation, err, "evaluation canceled")
		}
		return fn(v, w)
	})
}

// Evidence is caller-owned conditioning state passed into evaluations.
//
// It holds observations (a Leaf forced to one of its values, yielded with
// unit weight) and global conditions (every evaluation is conditioned on
// them). Both are acquired with a release function; releasing twice is a
// no-op. An Evidence is safe for concurrent use; each evaluation takes a
// snapshot when it starts.
type Evidence[P Prob[P]] struct {
	mu       sync.Mutex
	observed map[*Leaf[P]]any
	conds    []*evidenceCond[P]
}

type evidenceCond[P Prob[P]] struct {
	node Node[P]
}

// NewEvidence returns an empty evidence context.
func NewEvidence[P Prob[P]]() *Evidence[P] {
	return &Evidence[P]{observed: make(map[*Leaf[P]]any)}
}

// Observe forces leaf to v until release is called. v must be in the
// support of leaf, and leaf must not already be observed.
func (e *Evidence[P]) Observe(leaf *Leaf[P], v any) (release func(), err error) {
	if leaf == nil {
		return nil, constructionf("observe requires a distribution")
	}
	if !leaf.Contains(v) {
		return nil, infeasiblef("observed value %s is impossible", formatValue(v))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.observed[leaf]; ok {
		return nil, constructionf("distribution already observed with value %s", formatValue(cur))
	}
	e.observed[leaf] = v
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.observed, leaf)
			e.mu.Unlock()
		})
	}, nil
}

// Given adds global conditions until release is called.
func (e *Evidence[P]) Given(conds ...Node[P]) (release func()) {
	added := make([]*evidenceCond[P], len(conds))
	e.mu.Lock()
	for i, c := range conds {
		added[i] = &evidenceCond[P]{node: c}
		e.conds = append(e.conds, added[i])
	}
	e.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			kept := e.conds[:0]
			for _, c := range e.conds {
				if !containsCond(added, c) {
					kept = append(kept, c)
				}
			}
			e.conds = kept
		})
	}
}

func containsCond[P Prob[P]](set []*evidenceCond[P], c *evidenceCond[P]) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

// Len returns the number of active observations and conditions.
func (e *Evidence[P]) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.observed) + len(e.conds)
}

// apply snapshots e: root is wrapped in the global conditions and the
// observations are returned keyed by node.
func (e *Evidence[P]) apply(root Node[P]) (Node[P], map[Node[P]]any) {
	if e == nil {
		return root, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var observed map[Node[P]]any
	if len(e.observed) > 0 {
		observed = make(map[Node[P]]any, len(e.observed))
		for l, v := range e.observed {
			observed[l] = v
		}
	}
	if len(e.conds) > 0 {
		conds := make([]Node[P], len(e.conds))
		for i, c := range e.conds {
			conds[i] = c.node
		}
		root = Given(root, conds...)
	}
	return root, observed
}

// Observing runs fn with leaf observed as v and releases the observation
// when fn returns or panics.
func Observing[P Prob[P]](e *Evidence[P], leaf *Leaf[P], v any, fn func() error) error {
	release, err := e.Observe(leaf, v)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
