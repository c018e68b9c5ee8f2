package statues

import (
	"math"
	"unicode/utf8"
)

// Operation is a tagged binary operation on distribution values.
//
// Arithmetic, comparison and logic on distributions are all expressed as
// Map2 over an Operation; the tag (Name, Symbol) identifies it and Laws
// declares the algebraic properties that algorithms such as Times rely on.
type Operation struct {
	Name   string
	Symbol string
	Laws   Law
	Fn     func(a, b any) (any, error)
}

// NewOperation builds a custom operation.
func NewOperation(name string, laws Law, fn func(a, b any) (any, error)) Operation {
	return Operation{Name: name, Symbol: name, Laws: laws, Fn: fn}
}

// Apply runs the operation.
func (op Operation) Apply(a, b any) (any, error) {
	if op.Fn == nil {
		return nil, evaluationf("operation %q has no function", op.Name)
	}
	return op.Fn(a, b)
}

func (op Operation) String() string {
	if op.Symbol != "" {
		return op.Symbol
	}
	return op.Name
}

// UnaryOperation is a tagged single-argument operation.
type UnaryOperation struct {
	Name string
	Fn   func(a any) (any, error)
}

// Apply runs the operation.
func (op UnaryOperation) Apply(a any) (any, error) {
	if op.Fn == nil {
		return nil, evaluationf("operation %q has no function", op.Name)
	}
	return op.Fn(a)
}

// Built-in operations.
var (
	OpAdd      = Operation{Name: "add", Symbol: "+", Laws: Associative | Commutative, Fn: addValues}
	OpSub      = Operation{Name: "sub", Symbol: "-", Fn: subValues}
	OpMul      = Operation{Name: "mul", Symbol: "*", Laws: Associative | Commutative, Fn: mulValues}
	OpDiv      = Operation{Name: "div", Symbol: "/", Fn: divValues}
	OpFloorDiv = Operation{Name: "floordiv", Symbol: "//", Fn: floorDivValues}
	OpMod      = Operation{Name: "mod", Symbol: "%", Fn: modValues}
	OpPow      = Operation{Name: "pow", Symbol: "**", Fn: powValues}
	OpMin      = Operation{Name: "min", Symbol: "min", Laws: Associative | Commutative, Fn: minValues}
	OpMax      = Operation{Name: "max", Symbol: "max", Laws: Associative | Commutative, Fn: maxValues}

	OpEq = Operation{Name: "eq", Symbol: "==", Laws: Commutative, Fn: eqValues}
	OpNe = Operation{Name: "ne", Symbol: "!=", Laws: Commutative, Fn: neValues}
	OpLt = Operation{Name: "lt", Symbol: "<", Fn: orderOp("<", func(c int) bool { return c < 0 })}
	OpLe = Operation{Name: "le", Symbol: "<=", Fn: orderOp("<=", func(c int) bool { return c <= 0 })}
	OpGt = Operation{Name: "gt", Symbol: ">", Fn: orderOp(">", func(c int) bool { return c > 0 })}
	OpGe = Operation{Name: "ge", Symbol: ">=", Fn: orderOp(">=", func(c int) bool { return c >= 0 })}

	OpAnd = Operation{Name: "and", Symbol: "&", Laws: Associative | Commutative, Fn: logicOp("AND", func(a, b bool) bool { return a && b })}
	OpOr  = Operation{Name: "or", Symbol: "|", Laws: Associative | Commutative, Fn: logicOp("OR", func(a, b bool) bool { return a || b })}
	OpXor = Operation{Name: "xor", Symbol: "^", Laws: Associative | Commutative, Fn: logicOp("XOR", func(a, b bool) bool { return a != b })}

	OpNeg = UnaryOperation{Name: "neg", Fn: negValue}
	OpAbs = UnaryOperation{Name: "abs", Fn: absValue}
	OpNot = UnaryOperation{Name: "not", Fn: notValue}
)

func builtinOperations() []Operation {
	return []Operation{
		OpAdd, OpSub, OpMul, OpDiv, OpFloorDiv, OpMod, OpPow, OpMin, OpMax,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe,
		OpAnd, OpOr, OpXor,
	}
}

// OpIndex returns the item-access operation v[i] for tuples and strings.
func OpIndex(i int) UnaryOperation {
	return UnaryOperation{Name: "index", Fn: func(v any) (any, error) {
		switch x := v.(type) {
		case Tuple:
			if i < 0 || i >= x.Len() {
				return nil, evaluationf("tuple index %d out of range for %s", i, x)
			}
			return x.At(i), nil
		case string:
			if i < 0 || i >= utf8.RuneCountInString(x) {
				return nil, evaluationf("string index %d out of range for %q", i, x)
			}
			return string([]rune(x)[i]), nil
		}
		return nil, evaluationf("value of type %T is not indexable", v)
	}}
}

func unsupported(symbol string, a, b any) error {
	return evaluationf("unsupported operand types for %s: %T and %T", symbol, a, b)
}

// arith applies integer or float arithmetic. Integer results are int.
func arith(symbol string, a, b any, ints func(x, y int64) (any, error), floats func(x, y float64) (any, error)) (any, error) {
	ai, af, aInt, aok := number(a)
	bi, bf, bInt, bok := number(b)
	if !aok || !bok {
		return nil, unsupported(symbol, a, b)
	}
	if aInt && bInt {
		return ints(ai, bi)
	}
	return floats(af, bf)
}

func overflowf(symbol string, x, y int64) error {
	return evaluationf("integer overflow in %d %s %d", x, symbol, y)
}

func wrapInt(v int64, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return int(v), nil
}

func addInt(x, y int64) (any, error) {
	s := x + y
	if (y > 0 && s < x) || (y < 0 && s > x) {
		return nil, overflowf("+", x, y)
	}
	return int(s), nil
}

func subInt(x, y int64) (any, error) {
	d := x - y
	if (y > 0 && d > x) || (y < 0 && d < x) {
		return nil, overflowf("-", x, y)
	}
	return int(d), nil
}

func mulInt(x, y int64) (int64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	p := x * y
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) || p/y != x {
		return 0, overflowf("*", x, y)
	}
	return p, nil
}

// powInt squares the base only while exponent bits remain, so an overflow
// there means the result overflows too.
func powInt(base, exp int64) (int64, error) {
	res, x, y := int64(1), base, exp
	for y > 0 {
		var err error
		if y&1 == 1 {
			if res, err = mulInt(res, x); err != nil {
				return 0, overflowf("**", base, exp)
			}
		}
		if y >>= 1; y > 0 {
			if x, err = mulInt(x, x); err != nil {
				return 0, overflowf("**", base, exp)
			}
		}
	}
	return res, nil
}

func addValues(a, b any) (any, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x + y, nil
		}
		return nil, unsupported("+", a, b)
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return x.Concat(y), nil
		}
		return nil, unsupported("+", a, b)
	}
	return arith("+", a, b,
		addInt,
		func(x, y float64) (any, error) { return x + y, nil })
}

func subValues(a, b any) (any, error) {
	return arith("-", a, b,
		subInt,
		func(x, y float64) (any, error) { return x - y, nil })
}

func mulValues(a, b any) (any, error) {
	return arith("*", a, b,
		func(x, y int64) (any, error) { return wrapInt(mulInt(x, y)) },
		func(x, y float64) (any, error) { return x * y, nil })
}

// divValues is true division: the result is always float64.
func divValues(a, b any) (any, error) {
	_, af, _, aok := number(a)
	_, bf, _, bok := number(b)
	if !aok || !bok {
		return nil, unsupported("/", a, b)
	}
	if bf == 0 {
		return nil, evaluationf("division by zero")
	}
	return af / bf, nil
}

// floorDivValues rounds toward negative infinity.
func floorDivValues(a, b any) (any, error) {
	return arith("//", a, b,
		func(x, y int64) (any, error) {
			if y == 0 {
				return nil, evaluationf("integer division by zero")
			}
			if x == math.MinInt64 && y == -1 {
				return nil, overflowf("//", x, y)
			}
			q := x / y
			if (x%y != 0) && ((x < 0) != (y < 0)) {
				q--
			}
			return int(q), nil
		},
		func(x, y float64) (any, error) {
			if y == 0 {
				return nil, evaluationf("float division by zero")
			}
			return math.Floor(x / y), nil
		})
}

// modValues takes the sign of the divisor.
func modValues(a, b any) (any, error) {
	return arith("%", a, b,
		func(x, y int64) (any, error) {
			if y == 0 {
				return nil, evaluationf("integer modulo by zero")
			}
			m := x % y
			if m != 0 && ((m < 0) != (y < 0)) {
				m += y
			}
			return int(m), nil
		},
		func(x, y float64) (any, error) {
			if y == 0 {
				return nil, evaluationf("float modulo by zero")
			}
			m := math.Mod(x, y)
			if m != 0 && ((m < 0) != (y < 0)) {
				m += y
			}
			return m, nil
		})
}

func powValues(a, b any) (any, error) {
	return arith("**", a, b,
		func(x, y int64) (any, error) {
			if y < 0 {
				return math.Pow(float64(x), float64(y)), nil
			}
			return wrapInt(powInt(x, y))
		},
		func(x, y float64) (any, error) { return math.Pow(x, y), nil })
}

func minValues(a, b any) (any, error) {
	c, ok := compareValues(a, b)
	if !ok {
		return nil, unsupported("min", a, b)
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

func maxValues(a, b any) (any, error) {
	c, ok := compareValues(a, b)
	if !ok {
		return nil, unsupported("max", a, b)
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// valuesEqual treats numbers of different kinds as equal when their values
// are (1 == 1.0).
func valuesEqual(a, b any) bool {
	_, _, _, aNum := number(a)
	_, _, _, bNum := number(b)
	if aNum && bNum {
		c, _ := compareValues(a, b)
		return c == 0
	}
	return a == b
}

func eqValues(a, b any) (any, error) { return valuesEqual(a, b), nil }
func neValues(a, b any) (any, error) { return !valuesEqual(a, b), nil }

func orderOp(symbol string, test func(int) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		c, ok := compareValues(a, b)
		if !ok {
			return nil, unsupported(symbol, a, b)
		}
		return test(c), nil
	}
}

func checkBooleans(opName string, vals ...any) error {
	for _, v := range vals {
		if _, ok := v.(bool); !ok {
			return evaluationf("non-boolean object involved in %s logical operation", opName)
		}
	}
	return nil
}

func logicOp(opName string, fn func(a, b bool) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		if err := checkBooleans(opName, a, b); err != nil {
			return nil, err
		}
		return fn(a.(bool), b.(bool)), nil
	}
}

func negValue(a any) (any, error) {
	i, f, isInt, ok := number(a)
	if !ok {
		return nil, evaluationf("bad operand type for unary -: %T", a)
	}
	if isInt {
		return int(-i), nil
	}
	return -f, nil
}

func absValue(a any) (any, error) {
	i, f, isInt, ok := number(a)
	if !ok {
		return nil, evaluationf("bad operand type for abs: %T", a)
	}
	if isInt {
		if i < 0 {
			i = -i
		}
		return int(i), nil
	}
	return math.Abs(f), nil
}

func notValue(a any) (any, error) {
	if err := checkBooleans("NOT", a); err != nil {
		return nil, err
	}
	return !a.(bool), nil
}
