// internal/fixture/state.go
package fixture

import (
	"runtime/debug"

	"go.opentelemetry.io/otel"
)

// Environment exposes the process-wide state a measurement suppresses.
type Environment interface {
	// SetGCPercent sets the collector target and returns the previous value.
	SetGCPercent(percent int) int
	// SuppressTracing silences span creation until the returned func runs.
	SuppressTracing() (restore func())
}

type runtimeEnvironment struct{}

func (runtimeEnvironment) SetGCPercent(percent int) int { return debug.SetGCPercent(percent) }

// SuppressTracing mutes the global provider when it is a *TracerSwitch. Any
// other global provider, including the default placeholder, is left alone:
// replacing the placeholder binds it to the replacement for good.
func (runtimeEnvironment) SuppressTracing() func() {
	if sw, ok := otel.GetTracerProvider().(*TracerSwitch); ok {
		return sw.Mute()
	}
	return func() {}
}

// RuntimeEnvironment drives the Go runtime collector and the global
// OpenTelemetry tracer provider.
var RuntimeEnvironment Environment = runtimeEnvironment{}

// suppress disables collection (when asked to) and silences tracing. The
// returned func restores both to their previous state and must run on every
// exit path.
func suppress(env Environment, disableGC bool) func() {
	gcPercent := 0
	if disableGC {
		gcPercent = env.SetGCPercent(-1)
	}
	restoreTracing := env.SuppressTracing()

	return func() {
		restoreTracing()
		if disableGC {
			env.SetGCPercent(gcPercent)
		}
	}
}
