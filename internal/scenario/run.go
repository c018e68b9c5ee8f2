package scenario

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexshd/statues"
)

const tracerName = "github.com/alexshd/statues/internal/scenario"

// Options control how a scenario is evaluated and displayed.
type Options struct {
	Domain  string // recorded on spans and results
	Format  statues.FormatConfig
	Samples int // Monte-Carlo samples; 0 skips the estimate
	Sample  statues.SampleConfig
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Output   string // exact distribution, formatted
	Values   int
	Entropy  float64
	Summary  *statues.Summary // nil when the values have no natural order
	Estimate string           // Monte-Carlo distribution, formatted; empty when skipped
	Duration time.Duration
}

// Run builds s and evaluates it exactly, then by sampling when
// opts.Samples is positive. The evaluation runs inside a span.
func Run[P statues.Prob[P]](ctx context.Context, s Scenario[P], opts Options) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scenario.Run",
		trace.WithAttributes(
			attribute.String("scenario", s.Name),
			attribute.String("domain", opts.Domain),
		),
	)
	defer span.End()

	res, err := run(ctx, s, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, statues.KindOf(err).String())
		return Result{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	span.SetAttributes(
		attribute.Int("values", res.Values),
		attribute.Float64("entropy", res.Entropy),
		attribute.Int64("duration_us", res.Duration.Microseconds()),
	)
	return res, nil
}

func run[P statues.Prob[P]](ctx context.Context, s Scenario[P], opts Options) (Result, error) {
	start := time.Now()
	node, err := s.Build()
	if err != nil {
		return Result{}, err
	}
	leaf, err := statues.Evaluate(ctx, node, statues.DefaultEvalConfig[P]())
	if err != nil {
		return Result{}, err
	}
	res := Result{Name: s.Name, Values: leaf.Len()}
	if res.Output, err = statues.Format(leaf, opts.Format); err != nil {
		return Result{}, err
	}
	if res.Entropy, err = statues.Entropy[P](leaf); err != nil {
		return Result{}, err
	}
	if leaf.Sorted() {
		sum, err := statues.LeafSummary(leaf)
		if err != nil {
			return Result{}, err
		}
		res.Summary = &sum
	}
	res.Duration = time.Since(start)

	if opts.Samples > 0 {
		trace.SpanFromContext(ctx).AddEvent("sampling", trace.WithAttributes(attribute.Int("samples", opts.Samples)))
		est, err := statues.EstimateMC(ctx, node, opts.Samples, opts.Sample)
		if err != nil {
			return Result{}, err
		}
		if res.Estimate, err = statues.Format(est, opts.Format); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
