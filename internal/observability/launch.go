package observability

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Span attribute keys recorded on launch spans.
const (
	AttrEntryName     = attribute.Key("entry.name")
	AttrEntryPath     = attribute.Key("entry.path")
	AttrEntryKillable = attribute.Key("entry.killable")
	AttrEntryCapture  = attribute.Key("entry.capture_output")
	AttrPID           = attribute.Key("process.pid")
	AttrExitCode      = attribute.Key("process.exit_code")
	AttrSignaled      = attribute.Key("process.signaled")
	AttrKilled        = attribute.Key("process.killed")
	AttrDurationMS    = attribute.Key("process.duration_ms")
)

// EntryAttributes describes the entry a launch span is for.
func EntryAttributes(name, path string, killable, capture bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEntryName.String(name),
		AttrEntryPath.String(path),
		AttrEntryKillable.Bool(killable),
		AttrEntryCapture.Bool(capture),
	}
}

// ExitAttributes describes how a launched child ended.
func ExitAttributes(code int, signaled, killed bool, d time.Duration) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrExitCode.Int(code),
		AttrSignaled.Bool(signaled),
		AttrKilled.Bool(killed),
		AttrDurationMS.Int64(d.Milliseconds()),
	}
}

// ChildEnv returns env with the trace context of ctx added as TRACEPARENT,
// TRACESTATE and BAGGAGE variables, replacing any inherited ones, so an
// instrumented program can parent its spans under the launch. env is
// returned unchanged when ctx carries nothing to propagate.
func ChildEnv(ctx context.Context, env []string) []string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	if len(carrier) == 0 {
		return env
	}

	vars := make(map[string]string, len(carrier))
	for k, v := range carrier {
		vars[strings.ToUpper(k)] = v
	}

	out := make([]string, 0, len(env)+len(vars))

	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if _, replaced := vars[name]; replaced {
			continue
		}

		out = append(out, kv)
	}

	for _, name := range slices.Sorted(maps.Keys(vars)) {
		out = append(out, name+"="+vars[name])
	}

	return out
}
