package statues

import "fmt"

// Node is a random variable: a Leaf or a lazily evaluated expression over
// other nodes.
//
// Nodes are immutable and compared by identity. The same node may be
// reachable through several paths from an evaluation root; every such
// reference denotes the same random variable, so X minus X is certainly
// zero. Nodes are built with the constructors of this package (Joint, Map,
// Map2, Given, Switch, Clauses, Flat, ...) and evaluated with Evaluate.
type Node[P Prob[P]] interface {
	// children lists the nodes pulled by enumerate and sampleRaw.
	children() []Node[P]
	// enumerate produces the raw (value, weight) sequence, pulling children
	// through ps so their bindings are honored.
	enumerate(ps *pass[P], k yieldFunc[P]) error
	// sampleRaw draws one value, pulling children through ps.
	sampleRaw(ps *pass[P]) (any, error)
}

// yieldFunc consumes one enumerated item. Returning an error stops the
// enumeration and unwinds every suspended producer.
type yieldFunc[P any] func(v any, w P) error

// product is the independent join of its arguments.
type product[P Prob[P]] struct {
	args []Node[P]
}

// Joint returns the joint distribution of args; its values are Tuples.
func Joint[P Prob[P]](args ...Node[P]) Node[P] {
	return &product[P]{args: append([]Node[P](nil), args...)}
}

func (n *product[P]) children() []Node[P] { return n.args }

func (n *product[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	vals := make([]any, len(n.args))
	var rec func(i int, w P) error
	rec = func(i int, w P) error {
		if i == len(n.args) {
			return k(tupleOf(vals), w)
		}
		return ps.gen(n.args[i], func(v any, wi P) error {
			vals[i] = v
			return rec(i+1, w.Mul(wi))
		})
	}
	return rec(0, ps.one)
}

func (n *product[P]) sampleRaw(ps *pass[P]) (any, error) {
	vals := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := ps.sample(a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return tupleOf(vals), nil
}

// map1 applies fn to the values of one node.
type map1[P Prob[P]] struct {
	name string
	fn   func(any) (any, error)
	arg  Node[P]
}

// Map applies fn to the values of arg.
func Map[P Prob[P]](fn func(any) (any, error), arg Node[P]) Node[P] {
	return &map1[P]{name: "map", fn: fn, arg: arg}
}

// Apply applies a unary operation to arg.
func Apply[P Prob[P]](op UnaryOperation, arg Node[P]) Node[P] {
	return &map1[P]{name: op.Name, fn: op.Apply, arg: arg}
}

func (n *map1[P]) children() []Node[P] { return []Node[P]{n.arg} }

func (n *map1[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	return ps.gen(n.arg, func(v any, w P) error {
		r, err := n.fn(v)
		if err != nil {
			return err
		}
		return k(r, w)
	})
}

func (n *map1[P]) sampleRaw(ps *pass[P]) (any, error) {
	v, err := ps.sample(n.arg)
	if err != nil {
		return nil, err
	}
	return n.fn(v)
}

// map2 applies fn to the values of two nodes.
type map2[P Prob[P]] struct {
	name string
	fn   func(a, b any) (any, error)
	a, b Node[P]
}

// Map2 applies fn to every pair of values of a and b.
func Map2[P Prob[P]](fn func(a, b any) (any, error), a, b Node[P]) Node[P] {
	return &map2[P]{name: "map2", fn: fn, a: a, b: b}
}

// Apply2 applies a binary operation to a and b.
func Apply2[P Prob[P]](op Operation, a, b Node[P]) Node[P] {
	return &map2[P]{name: op.Name, fn: op.Apply, a: a, b: b}
}

func (n *map2[P]) children() []Node[P] { return []Node[P]{n.a, n.b} }

func (n *map2[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	return ps.gen(n.a, func(va any, wa P) error {
		return ps.gen(n.b, func(vb any, wb P) error {
			r, err := n.fn(va, vb)
			if err != nil {
				return err
			}
			return k(r, wa.Mul(wb))
		})
	})
}

func (n *map2[P]) sampleRaw(ps *pass[P]) (any, error) {
	va, err := ps.sample(n.a)
	if err != nil {
		return nil, err
	}
	vb, err := ps.sample(n.b)
	if err != nil {
		return nil, err
	}
	return n.fn(va, vb)
}

// mapN applies fn to the values of any number of nodes.
type mapN[P Prob[P]] struct {
	fn   func([]any) (any, error)
	args []Node[P]
}

// MapN applies fn to every combination of values of args. The slice passed
// to fn is reused between calls.
func MapN[P Prob[P]](fn func([]any) (any, error), args ...Node[P]) Node[P] {
	return &mapN[P]{fn: fn, args: append([]Node[P](nil), args...)}
}

func (n *mapN[P]) children() []Node[P] { return n.args }

func (n *mapN[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	vals := make([]any, len(n.args))
	var rec func(i int, w P) error
	rec = func(i int, w P) error {
		if i == len(n.args) {
			r, err := n.fn(vals)
			if err != nil {
				return err
			}
			return k(r, w)
		}
		return ps.gen(n.args[i], func(v any, wi P) error {
			vals[i] = v
			return rec(i+1, w.Mul(wi))
		})
	}
	return rec(0, ps.one)
}

func (n *mapN[P]) sampleRaw(ps *pass[P]) (any, error) {
	vals := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := ps.sample(a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return n.fn(vals)
}

// filter conditions a target on the conjunction of boolean guards.
type filter[P Prob[P]] struct {
	target Node[P]
	conds  []Node[P]
}

// Given conditions target on every cond being true.
//
// Guards are enumerated in order and short-circuit: guard i+1 is only pulled
// once guard i yielded true, and the target is only pulled under a binding
// where all guards hold. A guard yielding a non-boolean value is an
// evaluation error.
func Given[P Prob[P]](target Node[P], conds ...Node[P]) Node[P] {
	return &filter[P]{target: target, conds: append([]Node[P](nil), conds...)}
}

func (n *filter[P]) children() []Node[P] {
	return append(append([]Node[P](nil), n.conds...), n.target)
}

func (n *filter[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	var rec func(i int, w P) error
	rec = func(i int, w P) error {
		if i == len(n.conds) {
			return ps.gen(n.target, func(v any, wt P) error {
				return k(v, w.Mul(wt))
			})
		}
		return ps.gen(n.conds[i], func(v any, wc P) error {
			ok, err := guard(v)
			if err != nil || !ok {
				return err
			}
			return rec(i+1, w.Mul(wc))
		})
	}
	return rec(0, ps.one)
}

func (n *filter[P]) sampleRaw(ps *pass[P]) (any, error) {
	for _, c := range n.conds {
		v, err := ps.sample(c)
		if err != nil {
			return nil, err
		}
		ok, err := guard(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errReject
		}
	}
	return ps.sample(n.target)
}

func guard(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, evaluationf("non-boolean guard value %s (%T)", formatValue(v), v)
	}
	return b, nil
}

// table dispatches on the value of a discriminant node.
type table[P Prob[P]] struct {
	disc  Node[P]
	cases map[any]Node[P]
	def   Node[P]
}

// Switch returns the node selecting cases[v] for each value v of disc. A
// value of disc missing from cases is an evaluation error.
func Switch[P Prob[P]](disc Node[P], cases map[any]Node[P]) (Node[P], error) {
	return SwitchDefault(disc, cases, nil)
}

// SwitchDefault is Switch with a fallback for values missing from cases; a
// nil def means no fallback.
func SwitchDefault[P Prob[P]](disc Node[P], cases map[any]Node[P], def Node[P]) (Node[P], error) {
	if disc == nil {
		return nil, constructionf("switch requires a discriminant")
	}
	cp := make(map[any]Node[P], len(cases))
	for k, c := range cases {
		if c == nil {
			return nil, constructionf("switch case %s has no distribution", formatValue(k))
		}
		cp[valueKey(k)] = c
	}
	return &table[P]{disc: disc, cases: cp, def: def}, nil
}

// If selects then when cond is true and otherwise when it is false.
func If[P Prob[P]](cond, then, otherwise Node[P]) Node[P] {
	return &table[P]{disc: cond, cases: map[any]Node[P]{true: then, false: otherwise}}
}

func (n *table[P]) children() []Node[P] {
	out := []Node[P]{n.disc}
	for _, c := range n.cases {
		out = append(out, c)
	}
	if n.def != nil {
		out = append(out, n.def)
	}
	return out
}

func (n *table[P]) lookup(v any) (Node[P], error) {
	if isComparable(v) {
		if c, ok := n.cases[valueKey(v)]; ok {
			return c, nil
		}
	}
	if n.def != nil {
		return n.def, nil
	}
	return nil, evaluationf("missing value %s in table", formatValue(v))
}

func (n *table[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	return ps.gen(n.disc, func(v any, w P) error {
		c, err := n.lookup(v)
		if err != nil {
			return err
		}
		return ps.gen(c, func(cv any, cw P) error {
			return k(cv, w.Mul(cw))
		})
	})
}

func (n *table[P]) sampleRaw(ps *pass[P]) (any, error) {
	v, err := ps.sample(n.disc)
	if err != nil {
		return nil, err
	}
	c, err := n.lookup(v)
	if err != nil {
		return nil, err
	}
	return ps.sample(c)
}

// flatten inlines a node whose values are nodes.
type flatten[P Prob[P]] struct {
	outer Node[P]
}

// Flat returns the distribution of the inner values of outer, whose values
// must themselves be nodes of the same domain.
func Flat[P Prob[P]](outer Node[P]) Node[P] {
	return &flatten[P]{outer: outer}
}

func (n *flatten[P]) children() []Node[P] { return []Node[P]{n.outer} }

// dynamicInner reports whether the inner nodes are only known while
// enumerating, in which case the pass binds every node.
func (n *flatten[P]) dynamicInner() bool {
	_, static := n.outer.(*Leaf[P])
	return !static
}

func inner[P Prob[P]](v any) (Node[P], error) {
	in, ok := v.(Node[P])
	if !ok || in == nil {
		return nil, evaluationf("flat requires distribution values, got %T", v)
	}
	return in, nil
}

func (n *flatten[P]) enumerate(ps *pass[P], k yieldFunc[P]) error {
	return ps.gen(n.outer, func(v any, w P) error {
		in, err := inner[P](v)
		if err != nil {
			return err
		}
		if err := ps.discover(in); err != nil {
			return err
		}
		return ps.gen(in, func(iv any, iw P) error {
			return k(iv, w.Mul(iw))
		})
	})
}

func (n *flatten[P]) sampleRaw(ps *pass[P]) (any, error) {
	v, err := ps.sample(n.outer)
	if err != nil {
		return nil, err
	}
	in, err := inner[P](v)
	if err != nil {
		return nil, err
	}
	if err := ps.discover(in); err != nil {
		return nil, err
	}
	return ps.sample(in)
}

// Arithmetic and logic shorthands over the built-in operations.

func Add[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpAdd, a, b) }
func Sub[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpSub, a, b) }
func Mul[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpMul, a, b) }
func Div[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpDiv, a, b) }
func Eq[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpEq, a, b) }
func Ne[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpNe, a, b) }
func Lt[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpLt, a, b) }
func Le[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpLe, a, b) }
func Gt[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpGt, a, b) }
func Ge[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpGe, a, b) }
func And[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpAnd, a, b) }
func Or[P Prob[P]](a, b Node[P]) Node[P] { return Apply2(OpOr, a, b) }
func Not[P Prob[P]](a Node[P]) Node[P] { return Apply(OpNot, a) }
func Neg[P Prob[P]](a Node[P]) Node[P] { return Apply(OpNeg, a) }

// Index returns the node of the i-th item of the tuple or string values of a.
func Index[P Prob[P]](a Node[P], i int) Node[P] { return Apply(OpIndex(i), a) }

// Const is a certain node holding v. It panics when v is not comparable.
func Const[P Prob[P]](v any) Node[P] {
	l, err := Certain[P](v)
	if err != nil {
		panic(fmt.Sprintf("statues: Const: %v", err))
	}
	return l
}

// EqConst compares a with a constant.
func EqConst[P Prob[P]](a Node[P], v any) Node[P] {
	return Map(func(x any) (any, error) { return valuesEqual(x, v), nil }, a)
}

// IsAnyOf is true when the value of a is one of vals.
func IsAnyOf[P Prob[P]](a Node[P], vals ...any) Node[P] {
	return Map(func(x any) (any, error) {
		for _, v := range vals {
			if valuesEqual(x, v) {
				return true, nil
			}
		}
		return false, nil
	}, a)
}

// IsNoneOf is true when the value of a is none of vals.
func IsNoneOf[P Prob[P]](a Node[P], vals ...any) Node[P] {
	return Not(IsAnyOf(a, vals...))
}

// Reduce folds args left to right with op. It needs at least one argument.
func Reduce[P Prob[P]](op Operation, args ...Node[P]) (Node[P], error) {
	if len(args) == 0 {
		return nil, constructionf("reduce %s needs at least one argument", op)
	}
	acc := args[0]
	for _, a := range args[1:] {
		acc = Apply2(op, acc, a)
	}
	return acc, nil
}

// Max is the exact maximum of args, keeping every dependency. Its cost grows
// with the product of the supports; see FastMax for independent leaves.
func Max[P Prob[P]](args ...Node[P]) (Node[P], error) { return Reduce(OpMax, args...) }

// Min is the exact minimum of args; see FastMin.
func Min[P Prob[P]](args ...Node[P]) (Node[P], error) { return Reduce(OpMin, args...) }
