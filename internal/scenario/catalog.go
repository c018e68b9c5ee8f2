// Package scenario holds the built-in models run by the statues command
// and evaluates them with tracing.
package scenario

import (
	"fmt"
	"strings"

	"github.com/alexshd/statues"
)

// Scenario is a named model. Build returns a fresh graph on every call, so
// scenarios never share variables with each other.
type Scenario[P statues.Prob[P]] struct {
	Name        string
	Description string
	Build       func() (statues.Node[P], error)
}

// Catalog returns the built-in scenarios over the domain P.
func Catalog[P statues.Prob[P]]() []Scenario[P] {
	return []Scenario[P]{
		{"dice", "total of two fair dice", twoDice[P]},
		{"dice-max", "highest of three fair dice", diceMax[P]},
		{"sprinkler", "P(rain | grass is wet) in the sprinkler network", sprinkler[P]},
		{"alarm", "P(burglary | John and Mary call) in the alarm network", alarm[P]},
		{"draw", "two balls drawn without replacement from an urn of 3 A, 2 B, 1 C", urnDraw[P]},
		{"binom", "successes among 10 fair trials, given at least 8", binomTail[P]},
	}
}

// Select returns the scenarios named in names, in catalog order. An empty
// names selects every scenario.
func Select[P statues.Prob[P]](all []Scenario[P], names []string) ([]Scenario[P], error) {
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []Scenario[P]
	for _, s := range all {
		if wanted[s.Name] {
			out = append(out, s)
			delete(wanted, s.Name)
		}
	}
	if len(wanted) > 0 {
		var unknown, known []string
		for n := range wanted {
			unknown = append(unknown, n)
		}
		for _, s := range all {
			known = append(known, s.Name)
		}
		return nil, fmt.Errorf("unknown scenario %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	return out, nil
}

func boolProb[P statues.Prob[P]](num, den int64) (statues.Node[P], error) {
	p, err := statues.Ratio[P](num, den)
	if err != nil {
		return nil, err
	}
	return statues.BoolProb(p)
}

func twoDice[P statues.Prob[P]]() (statues.Node[P], error) {
	return statues.Dice[P](2, 6)
}

func diceMax[P statues.Prob[P]]() (statues.Node[P], error) {
	d, err := statues.Die[P](6)
	if err != nil {
		return nil, err
	}
	return statues.FastMax[P](d, d.Clone(), d.Clone())
}

type row[P statues.Prob[P]] struct {
	cond     statues.Node[P]
	num, den int64
}

// table builds a boolean CPT from rows of (condition, P(true) as num/den).
func table[P statues.Prob[P]](rows ...row[P]) (statues.Node[P], error) {
	clauses := make([]statues.Clause[P], 0, len(rows))
	for _, r := range rows {
		p, err := boolProb[P](r.num, r.den)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, statues.When(r.cond, p))
	}
	return statues.CPT(clauses...)
}

func sprinkler[P statues.Prob[P]]() (statues.Node[P], error) {
	rain, err := boolProb[P](20, 100)
	if err != nil {
		return nil, err
	}
	spr, err := table(
		row[P]{rain, 1, 100},
		row[P]{statues.Not(rain), 40, 100},
	)
	if err != nil {
		return nil, err
	}
	wet, err := table(
		row[P]{statues.And(statues.Not(spr), statues.Not(rain)), 0, 100},
		row[P]{statues.And(statues.Not(spr), rain), 80, 100},
		row[P]{statues.And(spr, statues.Not(rain)), 90, 100},
		row[P]{statues.And(spr, rain), 99, 100},
	)
	if err != nil {
		return nil, err
	}
	return statues.Given(rain, wet), nil
}

func alarm[P statues.Prob[P]]() (statues.Node[P], error) {
	burglary, err := boolProb[P](1, 1000)
	if err != nil {
		return nil, err
	}
	earthquake, err := boolProb[P](2, 1000)
	if err != nil {
		return nil, err
	}
	al, err := table(
		row[P]{statues.And(burglary, earthquake), 950, 1000},
		row[P]{statues.And(burglary, statues.Not(earthquake)), 940, 1000},
		row[P]{statues.And(statues.Not(burglary), earthquake), 290, 1000},
		row[P]{statues.And(statues.Not(burglary), statues.Not(earthquake)), 1, 1000},
	)
	if err != nil {
		return nil, err
	}
	john, err := table(row[P]{al, 90, 100}, row[P]{statues.Not(al), 5, 100})
	if err != nil {
		return nil, err
	}
	mary, err := table(row[P]{al, 70, 100}, row[P]{statues.Not(al), 1, 100})
	if err != nil {
		return nil, err
	}
	return statues.Given(burglary, john, mary), nil
}

func urnDraw[P statues.Prob[P]]() (statues.Node[P], error) {
	urn, err := statues.FromCounts[P](
		statues.ValCount{Val: "A", Count: 3},
		statues.ValCount{Val: "B", Count: 2},
		statues.ValCount{Val: "C", Count: 1},
	)
	if err != nil {
		return nil, err
	}
	return statues.Draw[P](urn, 2, statues.DrawOptions{Sorted: true})
}

func binomTail[P statues.Prob[P]]() (statues.Node[P], error) {
	half, err := statues.Ratio[P](1, 2)
	if err != nil {
		return nil, err
	}
	b, err := statues.Binom(10, half)
	if err != nil {
		return nil, err
	}
	return statues.Given[P](b, statues.Ge[P](b, statues.Const[P](8))), nil
}
