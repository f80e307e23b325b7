// Package observability builds the process logger, tracer and metrics registry.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies the bot in logs, traces and metrics.
const ServiceName = "wordle-bot"

// Config selects the observability backends.
type Config struct {
	Environment     string
	LogLevel        string
	MetricsAddress  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceSampleRate float64
	// Output receives log lines. Nil means stdout.
	Output io.Writer
}

// Observability bundles the shared telemetry handles.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry

	shutdown func(context.Context) error
}

// New builds the logger, the metrics registry and, when an OTLP endpoint is
// configured, an exporting tracer provider. Otherwise spans go to a noop tracer.
func New(ctx context.Context, cfg Config) (*Observability, error) {
	logger := NewLogger(cfg.Output, cfg.LogLevel, cfg.Environment)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &Observability{
		Logger:   logger,
		Registry: registry,
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.OTLPEndpoint == "" {
		obs.Tracer = noop.NewTracerProvider().Tracer(ServiceName)
		return obs, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	obs.Tracer = provider.Tracer(ServiceName)
	obs.shutdown = provider.Shutdown

	logger.Info("Tracing enabled",
		slog.String("endpoint", cfg.OTLPEndpoint),
		slog.Float64("sample_rate", cfg.TraceSampleRate),
	)
	return obs, nil
}

// Shutdown flushes pending spans.
func (o *Observability) Shutdown(ctx context.Context) error {
	return o.shutdown(ctx)
}

// NewLogger returns a JSON logger, or a text logger when environment is
// "development". Unknown levels fall back to info.
func NewLogger(w io.Writer, level, environment string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", ServiceName))
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
