// Package otel sets up OpenTelemetry tracing for the statues command.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Options configure the tracer provider. They come from the command
// configuration (STATUES_OTEL_* variables and -otel-* flags).
type Options struct {
	ServiceName string
	Version     string
	Endpoint    string  // OTLP/HTTP URL; empty disables tracing
	Enabled     bool    // false disables tracing even with an endpoint
	SampleRatio float64 // fraction of scenario runs traced, in [0, 1]
}

// Active reports whether Setup will install a provider.
func (o Options) Active() bool {
	return o.Enabled && o.Endpoint != ""
}

// Setup installs a global tracer provider exporting to opts.Endpoint.
//
// When opts is not Active, Setup installs nothing and returns a no-op
// shutdown; spans started through otel.Tracer are then dropped. The
// returned shutdown flushes pending spans and should be deferred.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !opts.Active() {
		return noop, nil
	}
	if opts.SampleRatio < 0 || opts.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio %v outside [0, 1]", opts.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(opts.ServiceName))}
	if opts.Version != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(opts.Version)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	// each scenario run is a root span, so the ratio picks whole runs
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
