package statues

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Tuple is an immutable, comparable sequence of values.
//
// Tuples are the values produced by Joint and by draws. Two tuples with equal
// elements are equal under ==, so they can be used as distribution values and
// map keys.
type Tuple struct {
	n    int
	head any
	tail any // Tuple, or nil at the end of the chain
}

// NewTuple builds a tuple. Every element must be comparable.
func NewTuple(vals ...any) (Tuple, error) {
	for i, v := range vals {
		if !isComparable(v) {
			return Tuple{}, constructionf("tuple element %d of type %T is not comparable", i, v)
		}
	}
	return tupleOf(vals), nil
}

// MustTuple is NewTuple for literals known to be comparable.
func MustTuple(vals ...any) Tuple {
	t, err := NewTuple(vals...)
	if err != nil {
		panic(err)
	}
	return t
}

// tupleOf skips the comparability check; callers only pass values already
// held by a Leaf or produced by enumeration.
func tupleOf(vals []any) Tuple {
	var t Tuple
	for i := len(vals) - 1; i >= 0; i-- {
		t = t.prepend(vals[i])
	}
	return t
}

func (t Tuple) prepend(v any) Tuple {
	var tail any
	if t.n > 0 {
		tail = t
	}
	return Tuple{n: t.n + 1, head: v, tail: tail}
}

// Len returns the number of elements.
func (t Tuple) Len() int { return t.n }

// At returns element i. It panics when i is out of range.
func (t Tuple) At(i int) any {
	if i < 0 || i >= t.n {
		panic(fmt.Sprintf("statues: tuple index %d out of range [0,%d)", i, t.n))
	}
	cur := t
	for ; i > 0; i-- {
		cur = cur.tail.(Tuple)
	}
	return cur.head
}

// Values returns the elements as a fresh slice.
func (t Tuple) Values() []any {
	out := make([]any, 0, t.n)
	cur := t
	for cur.n > 0 {
		out = append(out, cur.head)
		if cur.tail == nil {
			break
		}
		cur = cur.tail.(Tuple)
	}
	return out
}

// Concat returns t followed by u.
func (t Tuple) Concat(u Tuple) Tuple {
	vals := t.Values()
	res := u
	for i := len(vals) - 1; i >= 0; i-- {
		res = res.prepend(vals[i])
	}
	return res
}

// Sorted returns the elements in natural order, or t itself when its
// elements have no common order.
func (t Tuple) Sorted() Tuple {
	vals := t.Values()
	sortValues(vals)
	return tupleOf(vals)
}

func (t Tuple) String() string {
	vals := t.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

// number extracts a numeric value. isInt reports whether v is an integer
// kind, in which case i holds it exactly.
func number(v any) (i int64, f float64, isInt bool, ok bool) {
	switch x := v.(type) {
	case int:
		return int64(x), float64(x), true, true
	case int8:
		return int64(x), float64(x), true, true
	case int16:
		return int64(x), float64(x), true, true
	case int32:
		return int64(x), float64(x), true, true
	case int64:
		return x, float64(x), true, true
	case uint:
		return int64(x), float64(x), true, true
	case uint8:
		return int64(x), float64(x), true, true
	case uint16:
		return int64(x), float64(x), true, true
	case uint32:
		return int64(x), float64(x), true, true
	case uint64:
		return int64(x), float64(x), true, true
	case float32:
		return 0, float64(x), false, true
	case float64:
		return 0, x, false, true
	}
	return 0, 0, false, false
}

// valueKey is the map key standing for v. Numbers that are equal under
// Eq share a key whatever their Go type, so 1, int64(1) and 1.0 are one
// value of a distribution; the first representation seen is the one kept.
// Numbers nested in tuples are not merged.
func valueKey(v any) any {
	i, f, isInt, ok := number(v)
	switch {
	case !ok:
		return v
	case isInt:
		return i
	case f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64:
		return int64(f)
	}
	return f
}

// compareValues is the natural order on values: numbers, strings, booleans
// (false < true) and tuples (lexicographic). ok is false when a and b have
// no common order.
func compareValues(a, b any) (c int, ok bool) {
	if ai, af, aInt, aNum := number(a); aNum {
		bi, bf, bInt, bNum := number(b)
		if !bNum {
			return 0, false
		}
		if aInt && bInt {
			return cmp3(ai < bi, ai > bi), true
		}
		return cmp3(af < bf, af > bf), true
	}
	switch x := a.(type) {
	case string:
		y, isStr := b.(string)
		if !isStr {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, isBool := b.(bool)
		if !isBool {
			return 0, false
		}
		return cmp3(!x && y, x && !y), true
	case Tuple:
		y, isTuple := b.(Tuple)
		if !isTuple {
			return 0, false
		}
		xs, ys := x.Values(), y.Values()
		for i := 0; i < len(xs) && i < len(ys); i++ {
			c, ok := compareValues(xs[i], ys[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return cmp3(len(xs) < len(ys), len(xs) > len(ys)), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

// sortValues sorts vals in place by natural order and reports whether it
// did. When some pair has no common order vals is left untouched.
func sortValues(vals []any) bool {
	if len(vals) == 1 {
		_, ok := compareValues(vals[0], vals[0])
		return ok
	}
	orig := append([]any(nil), vals...)
	failed := false
	sort.SliceStable(vals, func(i, j int) bool {
		c, ok := compareValues(vals[i], vals[j])
		if !ok {
			failed = true
		}
		return c < 0
	})
	if failed {
		copy(vals, orig)
		return false
	}
	return true
}
