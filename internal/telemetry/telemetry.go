// Package telemetry provides OpenTelemetry instrumentation for hello-eks.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is used when OTEL_SERVICE_NAME is unset
const DefaultServiceName = "hello-eks"

// RequestIDKey is the span attribute carrying X-Request-ID
const RequestIDKey = attribute.Key("http.request.id")

// Config holds the telemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Headers        map[string]string
	Insecure       bool
}

// Initialize sets up OpenTelemetry with the given configuration and installs
// the tracer provider globally. The returned function flushes and stops it.
func Initialize(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	// Not merged with resource.Default() to avoid schema conflicts
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithHeaders(cfg.Headers),
		otlptracehttp.WithTimeout(10 * time.Second),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// ConfigFromEnv builds a Config from the OTEL_* and HONEYCOMB_* environment variables
func ConfigFromEnv(serviceVersion string) Config {
	cfg := Config{
		ServiceName:    getEnvOrDefault("OTEL_SERVICE_NAME", DefaultServiceName),
		ServiceVersion: getEnvOrDefault("OTEL_SERVICE_VERSION", serviceVersion),
		Environment:    getEnvOrDefault("OTEL_ENVIRONMENT", "development"),
	}

	if honeycombKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombKey != "" {
		cfg.Endpoint = getEnvOrDefault("HONEYCOMB_ENDPOINT", "api.honeycomb.io")
		cfg.Headers = map[string]string{
			"x-honeycomb-team": honeycombKey,
		}
		cfg.Insecure = false
	} else {
		// Local collector (Jaeger, otel-collector sidecar)
		cfg.Endpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
		cfg.Insecure = true
	}

	return cfg
}

// InitializeFromEnv initializes OpenTelemetry using environment variables
func InitializeFromEnv(ctx context.Context, serviceVersion string) (func(context.Context) error, error) {
	return Initialize(ctx, ConfigFromEnv(serviceVersion))
}

// AnnotateRequest tags the request span in ctx with the correlation ID.
// A noop when no span is recording.
func AnnotateRequest(ctx context.Context, requestID string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(RequestIDKey.String(requestID))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
