package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/redqueen/internal/fixture"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrUnknownExporter is returned for an unsupported trace exporter name.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// InitTracing installs a global tracer provider for the named exporter,
// wrapped in a fixture.TracerSwitch so measured calls can mute it.
// "stdout" pretty-prints spans to w; "" and "none" leave the global provider
// untouched. The returned shutdown flushes pending spans.
func InitTracing(exporter, serviceVersion string, w io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, exporter)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", "redqueen"),
		attribute.String("service.version", serviceVersion),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(fixture.NewTracerSwitch(tp))
	return tp.Shutdown, nil
}
