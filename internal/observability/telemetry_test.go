package observability_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kioskware/gridlaunch/internal/observability"
)

type nopPropagator struct{}

func (nopPropagator) Inject(context.Context, propagation.TextMapCarrier) {}

func (nopPropagator) Extract(ctx context.Context, _ propagation.TextMapCarrier) context.Context {
	return ctx
}

func (nopPropagator) Fields() []string { return nil }

// pinGlobals installs a known provider and propagator and restores the
// process globals when the test ends.
func pinGlobals(t *testing.T) *sdktrace.TracerProvider {
	t.Helper()

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	prevHandler := otel.GetErrorHandler()

	tp := sdktrace.NewTracerProvider()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())

		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		otel.SetErrorHandler(prevHandler)
	})

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(nopPropagator{})

	return tp
}

func TestSetupTelemetry_DisabledKeepsGlobals(t *testing.T) {
	for _, cfg := range []*observability.TelemetryConfig{nil, {Enabled: false, Endpoint: "collector:4318"}} {
		tp := pinGlobals(t)

		shutdown, err := observability.SetupTelemetry(t.Context(), cfg)
		if err != nil {
			t.Fatalf("SetupTelemetry(%+v) error = %v", cfg, err)
		}

		if err := shutdown(t.Context()); err != nil {
			t.Fatalf("shutdown() error = %v", err)
		}

		if otel.GetTracerProvider() != tp {
			t.Fatalf("SetupTelemetry(%+v) replaced the tracer provider", cfg)
		}

		if _, ok := otel.GetTextMapPropagator().(nopPropagator); !ok {
			t.Fatalf("SetupTelemetry(%+v) replaced the propagator", cfg)
		}
	}
}

func TestSetupTelemetry_InstallsAndRestores(t *testing.T) {
	tests := []struct {
		name     string
		canceled bool
	}{
		{"clean shutdown", false},
		{"canceled shutdown", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := pinGlobals(t)

			shutdown, err := observability.SetupTelemetry(t.Context(), &observability.TelemetryConfig{
				Enabled:  true,
				Endpoint: "http://localhost:4318",
				KioskID:  "arcade-01",
				Version:  "1.2.0",
				Commit:   "abc123",
			})
			if err != nil {
				t.Fatalf("SetupTelemetry() error = %v", err)
			}

			got := otel.GetTracerProvider()
			if _, isNoop := got.(noop.TracerProvider); isNoop || got == tp {
				t.Fatalf("tracer provider = %T, want a fresh SDK provider", got)
			}

			ctx := t.Context()

			if tt.canceled {
				var cancel context.CancelFunc

				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			_ = shutdown(ctx)

			if otel.GetTracerProvider() != tp {
				t.Fatal("tracer provider not restored after shutdown")
			}

			if _, ok := otel.GetTextMapPropagator().(nopPropagator); !ok {
				t.Fatal("propagator not restored after shutdown")
			}
		})
	}
}

func TestIsTelemetryEnabled(t *testing.T) {
	tests := map[string]bool{
		"":         false,
		"1":        true,
		"true":     true,
		"YES":      true,
		"  true  ": true,
		"0":        false,
		"off":      false,
	}

	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			t.Setenv("OTEL_ENABLED", value)

			if got := observability.IsTelemetryEnabled(); got != want {
				t.Errorf("IsTelemetryEnabled() with OTEL_ENABLED=%q = %v, want %v", value, got, want)
			}
		})
	}
}

func TestChildEnv_NoSpan(t *testing.T) {
	env := []string{"PATH=/usr/bin", "TERM=linux"}

	got := observability.ChildEnv(context.Background(), env)
	if diff := cmp.Diff(env, got); diff != "" {
		t.Errorf("ChildEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestChildEnv_InjectsTraceparent(t *testing.T) {
	tp := pinGlobals(t)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, span := tp.Tracer("test").Start(context.Background(), "launch")
	defer span.End()

	env := []string{"PATH=/usr/bin", "TRACEPARENT=00-stale-stale-01"}

	got := observability.ChildEnv(ctx, env)
	if len(got) != 2 || got[0] != "PATH=/usr/bin" {
		t.Fatalf("ChildEnv() = %v, want PATH followed by one TRACEPARENT", got)
	}

	want := "TRACEPARENT=00-" + span.SpanContext().TraceID().String() + "-" + span.SpanContext().SpanID().String()
	if !strings.HasPrefix(got[1], want) {
		t.Errorf("ChildEnv()[1] = %q, want prefix %q", got[1], want)
	}
}

func TestExitAttributes(t *testing.T) {
	got := observability.ExitAttributes(137, true, true, 1500*time.Millisecond)

	want := []attribute.KeyValue{
		attribute.Int("process.exit_code", 137),
		attribute.Bool("process.signaled", true),
		attribute.Bool("process.killed", true),
		attribute.Int64("process.duration_ms", 1500),
	}

	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b attribute.Value) bool { return a == b })); diff != "" {
		t.Errorf("ExitAttributes() mismatch (-want +got):\n%s", diff)
	}
}
