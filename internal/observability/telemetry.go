package observability

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "gridlaunch"

// TelemetryConfig configures launch tracing.
type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
	// KioskID identifies the machine in exported spans. Empty falls back
	// to GRIDLAUNCH_KIOSK_ID, then the hostname.
	KioskID string
	Version string
	Commit  string
}

// TelemetryShutdown flushes pending spans and restores the previous globals.
type TelemetryShutdown func(ctx context.Context) error

// SetupTelemetry installs an OTLP/HTTP tracer provider and the W3C trace
// context propagator. Disabled or nil config leaves the globals alone.
func SetupTelemetry(ctx context.Context, cfg *TelemetryConfig) (TelemetryShutdown, error) {
	if cfg == nil || !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(kioskAttributes(cfg)...))
	if err != nil {
		return noopShutdown, fmt.Errorf("merge otel resource: %w", err)
	}

	opts := append([]otlptracehttp.Option{
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}, endpointOptions(cfg.Endpoint)...)

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noopShutdown, fmt.Errorf("create otel exporter: %w", err)
	}

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	prevHandler := otel.GetErrorHandler()

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	// Export failures must never write over the launcher screen.
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(error) {}))

	return func(shutdownCtx context.Context) error {
		defer func() {
			otel.SetTracerProvider(prevProvider)
			otel.SetTextMapPropagator(prevPropagator)
			otel.SetErrorHandler(prevHandler)
		}()

		if err := provider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown otel provider: %w", err)
		}

		return nil
	}, nil
}

func kioskAttributes(cfg *TelemetryConfig) []attribute.KeyValue {
	name := serviceName
	if env := os.Getenv("OTEL_SERVICE_NAME"); env != "" {
		name = env
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", name),
		attribute.String("service.namespace", "kiosk"),
		attribute.String("service.version", cfg.Version),
	}

	if cfg.Commit != "" {
		attrs = append(attrs, attribute.String("service.commit", cfg.Commit))
	}

	if id := kioskID(cfg.KioskID); id != "" {
		attrs = append(attrs, attribute.String("kiosk.id", id))
	}

	return attrs
}

func kioskID(configured string) string {
	if configured != "" {
		return configured
	}

	if env := strings.TrimSpace(os.Getenv("GRIDLAUNCH_KIOSK_ID")); env != "" {
		return env
	}

	host, err := os.Hostname()
	if err != nil {
		return ""
	}

	return host
}

// endpointOptions accepts host:port or a URL. An http:// URL selects an
// insecure connection and its path becomes the traces path.
func endpointOptions(endpoint string) []otlptracehttp.Option {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if !strings.Contains(endpoint, "://") || err != nil || u.Host == "" {
		return []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(u.Host)}

	if u.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	if u.Path != "" && u.Path != "/" {
		opts = append(opts, otlptracehttp.WithURLPath(u.Path))
	}

	return opts
}

// Tracer returns a named tracer from the global TracerProvider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

// IsTelemetryEnabled reports whether OTEL_ENABLED is set to a true value.
func IsTelemetryEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_ENABLED"))) {
	case "1", "true", "yes":
		return true
	}

	return false
}

func noopShutdown(context.Context) error { return nil }
