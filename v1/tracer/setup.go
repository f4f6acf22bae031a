package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Logger defines the logging operations used by this package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=tracer
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Tracer owns the process-wide OpenTelemetry tracer provider. Packages
// create their spans through otel.Tracer; this type only installs the
// provider and flushes it on shutdown.
type Tracer struct {
	tracer *trace.TracerProvider
	logger Logger
}

// NewClient creates the tracer provider and installs it, together with the
// W3C trace context propagator, as the global OpenTelemetry default.
//
// If export is enabled, spans are batched to an OTLP HTTP exporter.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "kouncil",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	}, logger)
func NewClient(cfg Config, logger Logger) (*Tracer, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			return nil, fmt.Errorf("cannot initiate tracer: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Tracer initialized", nil, map[string]interface{}{
		"service": cfg.ServiceName,
		"export":  cfg.EnableExport,
	})
	return &Tracer{tracer: tp, logger: logger}, nil
}

// Provider returns the underlying tracer provider.
func (t *Tracer) Provider() *trace.TracerProvider {
	return t.tracer
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.logger.Info("Shutting down tracer", nil)
	if t.tracer == nil {
		t.logger.Warn("Tracer was nil during shutdown", nil)
		return nil
	}
	return t.tracer.Shutdown(ctx)
}
