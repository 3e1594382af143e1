package fixture

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

var mutedTracer = tracenoop.NewTracerProvider().Tracer("")

// TracerSwitch is a tracer provider that forwards to a delegate and can be
// muted. Installed as the global provider, it lets measurements silence
// tracing without replacing the global. Tracers handed out before a Mute are
// muted as well.
type TracerSwitch struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	muted    atomic.Bool
}

// NewTracerSwitch wraps delegate.
func NewTracerSwitch(delegate trace.TracerProvider) *TracerSwitch {
	return &TracerSwitch{delegate: delegate}
}

// Tracer returns a tracer of the delegate that starts no-op spans while the
// switch is muted.
func (s *TracerSwitch) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &switchTracer{sw: s, tracer: s.delegate.Tracer(name, opts...)}
}

// Mute silences every tracer of the switch and returns a func restoring the
// previous state.
func (s *TracerSwitch) Mute() func() {
	prev := s.muted.Swap(true)
	return func() { s.muted.Store(prev) }
}

// Muted reports whether spans are currently silenced.
func (s *TracerSwitch) Muted() bool { return s.muted.Load() }

type switchTracer struct {
	embedded.Tracer

	sw     *TracerSwitch
	tracer trace.Tracer
}

func (t *switchTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t.sw.muted.Load() {
		return mutedTracer.Start(ctx, name, opts...)
	}
	return t.tracer.Start(ctx, name, opts...)
}
