// Package config loads the statues command configuration from the
// environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"github.com/alexshd/statues"
	"github.com/alexshd/statues/internal/otel"
)

// Config holds the command settings. Every field has an environment
// variable; flags override it.
type Config struct {
	LogLevel string        `env:"STATUES_LOG_LEVEL" envDefault:"info"`
	Domain   string        `env:"STATUES_DOMAIN" envDefault:"rat"`
	Display  string        `env:"STATUES_DISPLAY" envDefault:"/"`
	Decimals int           `env:"STATUES_DECIMALS" envDefault:"6"`
	Locale   string        `env:"STATUES_LOCALE" envDefault:"en"`
	Samples  int           `env:"STATUES_SAMPLES" envDefault:"0"`
	Seed     int64         `env:"STATUES_SEED" envDefault:"0"`
	MaxTries int           `env:"STATUES_MAX_TRIES" envDefault:"10000"`
	Parallel int           `env:"STATUES_PARALLEL" envDefault:"4"`
	Timeout  time.Duration `env:"STATUES_TIMEOUT" envDefault:"30s"`
	DBPath   string        `env:"STATUES_DB_PATH"`

	OtelEndpoint    string  `env:"STATUES_OTEL_ENDPOINT"`
	OtelEnabled     bool    `env:"STATUES_OTEL_ENABLED" envDefault:"true"`
	OtelSampleRatio float64 `env:"STATUES_OTEL_SAMPLE_RATIO" envDefault:"1"`

	// Scenarios restricts the run to these names; empty runs every one.
	Scenarios []string `env:"STATUES_SCENARIOS" envSeparator:","`
}

// Domains accepted by Config.Domain.
const (
	DomainRat     = "rat"
	DomainFloat   = "float"
	DomainDecimal = "decimal"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, then applies flags parsed from args.
func Load(name string, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.Domain, "domain", cfg.Domain, "probability domain: rat, float or decimal")
	fs.StringVar(&cfg.Display, "display", cfg.Display, "display kind: '', '/', '.', '%', '-', '/-', '.-' or '%-'")
	fs.IntVar(&cfg.Decimals, "decimals", cfg.Decimals, "digits after the point for '.' and '%'")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "BCP 47 tag used to format numbers")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "Monte-Carlo samples per scenario, 0 to skip")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "sampling seed, 0 for a random one")
	fs.IntVar(&cfg.MaxTries, "max-tries", cfg.MaxTries, "rejected worlds allowed per sample")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "scenarios evaluated at once")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "deadline for the whole run")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite file recording the runs, empty to skip")
	fs.StringVar(&cfg.OtelEndpoint, "otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP trace endpoint, empty to disable tracing")
	fs.BoolVar(&cfg.OtelEnabled, "otel", cfg.OtelEnabled, "export traces when an endpoint is set")
	fs.Float64Var(&cfg.OtelSampleRatio, "otel-sample-ratio", cfg.OtelSampleRatio, "fraction of scenario runs traced")
	scenarios := fs.String("scenarios", strings.Join(cfg.Scenarios, ","), "comma separated scenario names")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Scenarios = splitList(*scenarios)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the values that flags and env cannot type-check.
func (c Config) Validate() error {
	var errs []error
	switch c.Domain {
	case DomainRat, DomainFloat, DomainDecimal:
	default:
		errs = append(errs, fmt.Errorf("unknown domain %q", c.Domain))
	}
	if !statues.DisplayKind(c.Display).Valid() {
		errs = append(errs, fmt.Errorf("unknown display kind %q", c.Display))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Tag(); err != nil {
		errs = append(errs, err)
	}
	if c.Samples < 0 {
		errs = append(errs, fmt.Errorf("samples must be non-negative, got %d", c.Samples))
	}
	if c.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("parallel must be positive, got %d", c.Parallel))
	}
	if c.OtelSampleRatio < 0 || c.OtelSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("otel sample ratio must be within [0, 1], got %v", c.OtelSampleRatio))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// Tag parses Locale.
func (c Config) Tag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English, fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// FormatConfig builds the display settings.
func (c Config) FormatConfig() statues.FormatConfig {
	fc := statues.DefaultFormatConfig()
	fc.Kind = statues.DisplayKind(c.Display)
	fc.Decimals = c.Decimals
	if tag, err := c.Tag(); err == nil {
		fc.Locale = tag
	}
	return fc
}

// Telemetry builds the tracer provider options for the named service.
func (c Config) Telemetry(serviceName, version string) otel.Options {
	return otel.Options{
		ServiceName: serviceName,
		Version:     version,
		Endpoint:    c.OtelEndpoint,
		Enabled:     c.OtelEnabled,
		SampleRatio: c.OtelSampleRatio,
	}
}

// SampleConfig builds the sampling settings.
func (c Config) SampleConfig() statues.SampleConfig {
	sc := statues.DefaultSampleConfig()
	sc.Seed = c.Seed
	sc.MaxTries = c.MaxTries
	return sc
}
