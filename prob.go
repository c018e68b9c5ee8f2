package statues

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Prob is the numeric domain of probability weights.
//
// The engine is generic over P: every weight sum and product goes through
// these methods, never through a concrete numeric type. The zero value of P
// must be a valid zero weight.
//
// Three domains ship with the package:
//
//	Float    float64 weights, fast, inexact
//	Rat      exact rationals backed by math/big
//	Decimal  arbitrary-precision decimals (github.com/shopspring/decimal)
//
// Division and float conversion are optional capabilities (Quotient,
// Approximator, FloatConverter). A domain that lacks one still supports
// unnormalized enumeration; queries that need it fail with
// ErrNumericCapability.
type Prob[P any] interface {
	Add(P) P
	Sub(P) P
	Mul(P) P
	Cmp(P) int
	IsZero() bool
	One() P
	FromInt(int64) P
	String() string
}

// Quotient is the division capability, required for normalization.
type Quotient[P any] interface {
	Quo(P) (P, error)
}

// Approximator converts a weight to float64, required for logarithms and
// moments.
type Approximator interface {
	Float64() float64
}

// FloatConverter builds a weight from a float64, required by constructors
// that derive weights from floating point formulas (Poisson).
type FloatConverter[P any] interface {
	FromFloat64(float64) (P, error)
}

func one[P Prob[P]]() P {
	var z P
	return z.One()
}

func fromInt[P Prob[P]](n int64) P {
	var z P
	return z.FromInt(n)
}

func quo[P Prob[P]](a, b P) (P, error) {
	q, ok := any(a).(Quotient[P])
	if !ok {
		return a, capabilityf("probability type %T cannot divide", a)
	}
	return q.Quo(b)
}

func approx[P Prob[P]](p P) (float64, error) {
	f, ok := any(p).(Approximator)
	if !ok {
		return 0, capabilityf("probability type %T cannot be converted to float", p)
	}
	return f.Float64(), nil
}

func fromFloat[P Prob[P]](f float64) (P, error) {
	var z P
	c, ok := any(z).(FloatConverter[P])
	if !ok {
		return z, capabilityf("probability type %T cannot be built from a float", z)
	}
	return c.FromFloat64(f)
}

func sumOf[P Prob[P]](ps []P) P {
	var total P
	for _, p := range ps {
		total = total.Add(p)
	}
	return total
}

// Ratio returns num/den in the domain P.
func Ratio[P Prob[P]](num, den int64) (P, error) {
	if den == 0 {
		var z P
		return z, domainf("zero denominator in %d/%d", num, den)
	}
	return quo(fromInt[P](num), fromInt[P](den))
}

// checkProb rejects weights outside the unit interval.
func checkProb[P Prob[P]](p P) error {
	var zero P
	if p.Cmp(zero) < 0 {
		return domainf("negative probability %s", p)
	}
	if p.Cmp(one[P]()) > 0 {
		return domainf("probability %s strictly greater than 1", p)
	}
	return nil
}

// Float is the float64 probability domain.
type Float float64

func (x Float) Add(y Float) Float { return x + y }
func (x Float) Sub(y Float) Float { return x - y }
func (x Float) Mul(y Float) Float { return x * y }
func (x Float) IsZero() bool { return x == 0 }
func (Float) One() Float { return 1 }
func (Float) FromInt(n int64) Float { return Float(n) }
func (x Float) Float64() float64 { return float64(x) }

func (x Float) Cmp(y Float) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func (x Float) Quo(y Float) (Float, error) {
	if y == 0 {
		return 0, domainf("division by zero probability")
	}
	return x / y, nil
}

func (Float) FromFloat64(f float64) (Float, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domainf("non-finite probability %v", f)
	}
	return Float(f), nil
}

func (x Float) String() string {
	return strconv.FormatFloat(float64(x), 'g', -1, 64)
}

// Rat is the exact rational probability domain. The zero value is 0.
type Rat struct {
	r *big.Rat
}

// NewRat returns num/den. It panics when den is zero, like big.NewRat.
func NewRat(num, den int64) Rat {
	return Rat{big.NewRat(num, den)}
}

// RatFromBig copies r into a Rat.
func RatFromBig(r *big.Rat) Rat {
	return Rat{new(big.Rat).Set(r)}
}

func (x Rat) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

// Big returns a copy of the underlying rational.
func (x Rat) Big() *big.Rat { return new(big.Rat).Set(x.rat()) }

func (x Rat) Add(y Rat) Rat { return Rat{new(big.Rat).Add(x.rat(), y.rat())} }
func (x Rat) Sub(y Rat) Rat { return Rat{new(big.Rat).Sub(x.rat(), y.rat())} }
func (x Rat) Mul(y Rat) Rat { return Rat{new(big.Rat).Mul(x.rat(), y.rat())} }
func (x Rat) Cmp(y Rat) int { return x.rat().Cmp(y.rat()) }
func (x Rat) IsZero() bool { return x.r == nil || x.r.Sign() == 0 }
func (Rat) One() Rat { return Rat{big.NewRat(1, 1)} }

func (Rat) FromInt(n int64) Rat { return Rat{new(big.Rat).SetInt64(n)} }

func (x Rat) Quo(y Rat) (Rat, error) {
	if y.IsZero() {
		return Rat{}, domainf("division by zero probability")
	}
	return Rat{new(big.Rat).Quo(x.rat(), y.rat())}, nil
}

func (x Rat) Float64() float64 {
	f, _ := x.rat().Float64()
	return f
}

func (Rat) FromFloat64(f float64) (Rat, error) {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		return Rat{}, domainf("non-finite probability %v", f)
	}
	return Rat{r}, nil
}

func (x Rat) String() string { return x.rat().RatString() }

// Decimal is the arbitrary-precision decimal domain. Quotients are rounded
// to decimal.DivisionPrecision digits.
type Decimal struct {
	d decimal.Decimal
}

// NewDecimal parses s, e.g. "0.125".
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, domainf("invalid decimal %q", s)
	}
	return Decimal{d}, nil
}

func (x Decimal) Add(y Decimal) Decimal { return Decimal{x.d.Add(y.d)} }
func (x Decimal) Sub(y Decimal) Decimal { return Decimal{x.d.Sub(y.d)} }
func (x Decimal) Mul(y Decimal) Decimal { return Decimal{x.d.Mul(y.d)} }
func (x Decimal) Cmp(y Decimal) int { return x.d.Cmp(y.d) }
func (x Decimal) IsZero() bool { return x.d.IsZero() }
func (Decimal) One() Decimal { return Decimal{decimal.NewFromInt(1)} }

func (Decimal) FromInt(n int64) Decimal { return Decimal{decimal.NewFromInt(n)} }

func (x Decimal) Quo(y Decimal) (Decimal, error) {
	if y.d.IsZero() {
		return Decimal{}, domainf("division by zero probability")
	}
	return Decimal{x.d.Div(y.d)}, nil
}

func (x Decimal) Float64() float64 {
	f, _ := x.d.Float64()
	return f
}

func (Decimal) FromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, domainf("non-finite probability %v", f)
	}
	return Decimal{decimal.NewFromFloat(f)}, nil
}

func (x Decimal) String() string { return x.d.String() }

// Big returns the exact rational value.
func (x Decimal) Big() *big.Rat { return x.d.Rat() }
