package scenario

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/alexshd/statues"
)

func exactOptions() Options {
	fc := statues.DefaultFormatConfig()
	fc.Kind = statues.DisplayFraction
	return Options{Domain: "rat", Format: fc}
}

func TestCatalog_AllScenariosEvaluate(t *testing.T) {
	for _, s := range Catalog[statues.Rat]() {
		t.Run(s.Name, func(t *testing.T) {
			res, err := Run(context.Background(), s, exactOptions())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if res.Values == 0 || res.Output == "" {
				t.Fatalf("empty result: %+v", res)
			}
			t.Logf("✓ %s (%d values, H=%.4f bits):\n%s", s.Name, res.Values, res.Entropy, res.Output)
		})
	}
}

func TestCatalog_KnownAnswers(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want statues.Rat
	}{
		{"dice", 7, statues.NewRat(1, 6)},
		{"dice-max", 6, statues.NewRat(91, 216)},
		{"sprinkler", true, statues.NewRat(16038, 44838)},
		{"draw", statues.MustTuple("A", "B"), statues.NewRat(7, 12)},
		{"binom", 10, statues.NewRat(1, 56)},
	}

	catalog := Catalog[statues.Rat]()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := Select(catalog, []string{tt.name})
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			node, err := selected[0].Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			statues.AssertProbability(t, node, tt.v, tt.want, statues.ExactAssertionConfig())
		})
	}

	alarm, err := Select(catalog, []string{"alarm"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	node, err := alarm[0].Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p, err := statues.ProbTrueFloat(node)
	if err != nil {
		t.Fatalf("probability: %v", err)
	}
	if math.Abs(p-0.28417183536439294) > 1e-12 {
		t.Fatalf("P(burglary | calls) = %.17f", p)
	}
}

func TestSelect(t *testing.T) {
	catalog := Catalog[statues.Float]()

	all, err := Select(catalog, nil)
	if err != nil || len(all) != len(catalog) {
		t.Fatalf("empty selection should return the catalog, got %d, %v", len(all), err)
	}

	two, err := Select(catalog, []string{"alarm", "dice"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(two) != 2 || two[0].Name != "dice" || two[1].Name != "alarm" {
		t.Fatalf("expected catalog order, got %s, %s", two[0].Name, two[1].Name)
	}

	_, err = Select(catalog, []string{"dice", "poker"})
	if err == nil || !strings.Contains(err.Error(), "unknown scenario poker") {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}

func TestRun_WithSampling(t *testing.T) {
	catalog := Catalog[statues.Float]()
	dice, err := Select(catalog, []string{"dice"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	opts := Options{Domain: "float", Format: statues.DefaultFormatConfig(), Samples: 2000}
	opts.Format.Kind = statues.DisplayPercent
	opts.Sample = statues.DefaultSampleConfig()
	opts.Sample.Seed = 9

	res, err := Run(context.Background(), dice[0], opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Estimate == "" {
		t.Fatal("expected a Monte-Carlo estimate")
	}
	if res.Summary == nil || res.Summary.P50 != 7 {
		t.Fatalf("expected median 7, got %+v", res.Summary)
	}
	t.Logf("✓ Estimate:\n%s", res.Estimate)
}

func TestRun_ReportsErrors(t *testing.T) {
	broken := Scenario[statues.Rat]{
		Name: "broken",
		Build: func() (statues.Node[statues.Rat], error) {
			d, err := statues.Die[statues.Rat](6)
			if err != nil {
				return nil, err
			}
			return statues.Given[statues.Rat](d, statues.Gt[statues.Rat](d, statues.Const[statues.Rat](6))), nil
		},
	}

	_, err := Run(context.Background(), broken, exactOptions())
	if statues.KindOf(err) != statues.KindInfeasible {
		t.Fatalf("expected infeasible error, got %v", err)
	}
	if !strings.Contains(err.Error(), "scenario broken") {
		t.Fatalf("expected scenario name in %v", err)
	}
}
