package config

import (
	"strings"
	"testing"
	"time"

	"github.com/alexshd/statues"
)

type envTestConfig struct {
	Port int `env:"STATUES_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("STATUES_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("statues", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Domain != DomainRat || cfg.Display != "/" || cfg.Parallel != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %s, want 30s", cfg.Timeout)
	}
	if len(cfg.Scenarios) != 0 {
		t.Fatalf("expected no scenario filter, got %v", cfg.Scenarios)
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("STATUES_DOMAIN", "float")
	t.Setenv("STATUES_SEED", "42")
	t.Setenv("STATUES_SCENARIOS", "dice, sprinkler")

	cfg, err := Load("statues", []string{"-domain", "decimal", "-display", "%", "-locale", "fr"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Domain != DomainDecimal {
		t.Fatalf("flag should override env, domain = %q", cfg.Domain)
	}
	if cfg.Seed != 42 {
		t.Fatalf("seed = %d, want 42", cfg.Seed)
	}
	if len(cfg.Scenarios) != 2 || cfg.Scenarios[1] != "sprinkler" {
		t.Fatalf("scenarios = %v", cfg.Scenarios)
	}

	fc := cfg.FormatConfig()
	if fc.Kind != statues.DisplayPercent || fc.Locale.String() != "fr" {
		t.Fatalf("format config = %+v", fc)
	}
	if sc := cfg.SampleConfig(); sc.Seed != 42 || sc.MaxTries != 10000 {
		t.Fatalf("sample config = %+v", sc)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"domain", []string{"-domain", "complex"}, "unknown domain"},
		{"display", []string{"-display", "?"}, "unknown display kind"},
		{"log level", []string{"-log-level", "loud"}, "log level"},
		{"parallel", []string{"-parallel", "0"}, "parallel must be positive"},
		{"samples", []string{"-samples", "-1"}, "samples must be non-negative"},
		{"otel sample ratio", []string{"-otel-sample-ratio", "2"}, "otel sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("statues", tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestTelemetry(t *testing.T) {
	t.Setenv("STATUES_OTEL_ENDPOINT", "http://collector:4318")
	t.Setenv("STATUES_OTEL_SAMPLE_RATIO", "0.25")

	cfg, err := Load("statues", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := cfg.Telemetry("statues", "1.0.0")
	if !opts.Active() || opts.Endpoint != "http://collector:4318" || opts.SampleRatio != 0.25 {
		t.Fatalf("telemetry options = %+v", opts)
	}

	cfg, err = Load("statues", []string{"-otel=false"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telemetry("statues", "").Active() {
		t.Fatal("-otel=false should disable tracing")
	}
	t.Logf("✓ Tracing follows STATUES_OTEL_* and -otel flags")
}
