// Package telemetry wires up OpenTelemetry tracing: an OTLP/HTTP exporter,
// a batching span processor, and a resource describing this service.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/config"
)

// SetupTelemetry configures the global OTel tracer provider and text-map
// propagator for the process. When cfg.Telemetry.OTLPEndpoint is empty, it
// installs a no-op provider so otelconnect interceptors still work without
// emitting anything. The returned io.Closer flushes and shuts down the
// provider; callers register it in the shutdown package's observe phase.
func SetupTelemetry(ctx context.Context, cfg *config.Config) (*Provider, error) {
	if cfg.Telemetry.OTLPEndpoint == "" {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		return &Provider{tp: tp}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.Telemetry.ServiceName),
			semconv.ServiceVersion(cfg.Telemetry.ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("merge OTel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp}, nil
}

// Provider wraps the OTel SDK tracer provider so it can be registered as an
// io.Closer in the shutdown package's observe phase.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Close flushes any buffered spans and shuts down the tracer provider.
func (p *Provider) Close() error {
	if p.tp == nil {
		return nil
	}

	return p.tp.Shutdown(context.Background())
}
