// Command statues evaluates the built-in probability scenarios and prints
// their exact distributions.
//
// Configuration comes from STATUES_* environment variables, overridden by
// flags (see -h). Scenarios are evaluated concurrently; results are printed
// in catalog order and, when -db is set, recorded in a SQLite file.
//
// Example:
//
//	statues -domain rat -display /- -scenarios sprinkler,alarm
//	STATUES_SAMPLES=10000 statues -domain float -display %
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/alexshd/statues"
	"github.com/alexshd/statues/internal/config"
	"github.com/alexshd/statues/internal/otel"
	"github.com/alexshd/statues/internal/scenario"
	"github.com/alexshd/statues/internal/store"
)

const (
	serviceName            = "statues"
	version                = "0.1.0"
	defaultShutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load(serviceName, args)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
	logger := slog.Default().With(slog.String("component", "cli"))

	shutdown, err := otel.Setup(ctx, cfg.Telemetry(serviceName, version))
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", "error", err)
		}
	}()

	var runs *store.Store
	if cfg.DBPath != "" {
		if runs, err = store.Open(ctx, cfg.DBPath); err != nil {
			return err
		}
		defer runs.Close()
		logger.Debug("recording runs", "db", cfg.DBPath)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	switch cfg.Domain {
	case config.DomainFloat:
		return runAll[statues.Float](ctx, cfg, runs, out, logger)
	case config.DomainDecimal:
		return runAll[statues.Decimal](ctx, cfg, runs, out, logger)
	default:
		return runAll[statues.Rat](ctx, cfg, runs, out, logger)
	}
}

// runAll evaluates the selected scenarios with at most cfg.Parallel in
// flight. A failing scenario is logged and reported at the end; the others
// still run.
func runAll[P statues.Prob[P]](ctx context.Context, cfg config.Config, runs *store.Store, out io.Writer, logger *slog.Logger) error {
	selected, err := scenario.Select(scenario.Catalog[P](), cfg.Scenarios)
	if err != nil {
		return err
	}
	opts := scenario.Options{
		Domain:  cfg.Domain,
		Format:  cfg.FormatConfig(),
		Samples: cfg.Samples,
		Sample:  cfg.SampleConfig(),
	}

	results := make([]scenario.Result, len(selected))
	errs := make([]error, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, s := range selected {
		g.Go(func() error {
			res, err := scenario.Run(gctx, s, opts)
			if err != nil {
				logger.Error("scenario failed", "scenario", s.Name, "kind", statues.KindOf(err), "error", err)
				errs[i] = err
				return nil
			}
			logger.Info("scenario evaluated", "scenario", s.Name, "values", res.Values,
				"entropy", fmt.Sprintf("%.4f", res.Entropy), "duration", res.Duration)
			results[i] = res
			if runs == nil {
				return nil
			}
			_, err = runs.SaveRun(gctx, store.Run{
				Scenario: s.Name,
				Domain:   cfg.Domain,
				Display:  cfg.Display,
				Result:   res.Output,
				Values:   res.Values,
				Entropy:  res.Entropy,
				Samples:  cfg.Samples,
				Seed:     cfg.Seed,
				Duration: res.Duration,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("record runs: %w", err)
	}

	for i, s := range selected {
		if errs[i] != nil {
			continue
		}
		printResult(out, s.Description, results[i])
	}
	return errors.Join(errs...)
}

func printResult(out io.Writer, description string, res scenario.Result) {
	fmt.Fprintf(out, "== %s: %s\n%s\n", res.Name, description, res.Output)
	if res.Summary != nil {
		fmt.Fprintf(out, "   min %v  p50 %v  p95 %v  p99 %v  max %v\n",
			res.Summary.Min, res.Summary.P50, res.Summary.P95, res.Summary.P99, res.Summary.Max)
	}
	fmt.Fprintf(out, "   entropy %.4f bits\n", res.Entropy)
	if res.Estimate != "" {
		fmt.Fprintf(out, "-- Monte-Carlo estimate\n%s\n", res.Estimate)
	}
	fmt.Fprintln(out)
}
