package statues

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// KindConstruction: a Leaf or node could not be built (no values,
	// non-comparable value, overlapping or incomplete guards).
	KindConstruction Kind = iota + 1

	// KindEvaluation: enumeration failed (table miss, non-boolean guard,
	// boolean operator applied to a non-boolean value).
	KindEvaluation

	// KindInfeasible: the accumulated weight of a query is zero.
	KindInfeasible

	// KindDomain: an argument lies outside its valid range (probability
	// outside [0,1], drawing more items than the population holds).
	KindDomain

	// KindNumericCapability: the probability domain lacks an operation the
	// query needs (division, conversion to float).
	KindNumericCapability
)

func (k Kind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindEvaluation:
		return "evaluation"
	case KindInfeasible:
		return "infeasible"
	case KindDomain:
		return "domain"
	case KindNumericCapability:
		return "numeric capability"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConstruction      = &Error{Kind: KindConstruction}
	ErrEvaluation        = &Error{Kind: KindEvaluation}
	ErrInfeasible        = &Error{Kind: KindInfeasible}
	ErrDomain            = &Error{Kind: KindDomain}
	ErrNumericCapability = &Error{Kind: KindNumericCapability}
)

// Error is the error type returned by every operation of the package.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("statues: %s: %v", msg, e.Cause)
	}
	return "statues: " + msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any *Error with the same Kind, so the sentinels above can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func constructionf(format string, args ...any) error {
	return newError(KindConstruction, nil, format, args...)
}

func evaluationf(format string, args ...any) error {
	return newError(KindEvaluation, nil, format, args...)
}

func infeasiblef(format string, args ...any) error {
	return newError(KindInfeasible, nil, format, args...)
}

func domainf(format string, args ...any) error {
	return newError(KindDomain, nil, format, args...)
}

func capabilityf(format string, args ...any) error {
	return newError(KindNumericCapability, nil, format, args...)
}

// errNoValue is the message used whenever conditioning leaves nothing.
const errNoValue = "no value - impossible evidence"
