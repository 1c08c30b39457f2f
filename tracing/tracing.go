// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Shutdown flushes buffered spans and releases the provider.
type Shutdown func(context.Context) error

// Setup installs a tracer provider for exporter and returns its shutdown
// function. With ExporterNone the global no-op provider is left in place.
// Stdout spans are written as JSON to w.
func Setup(exporter string, w io.Writer) (Shutdown, error) {
	switch exporter {
	case ExporterNone, "":
		logging.Log.Info("TRACING: disabled")
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", exporter)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	res := resource.NewSchemaless(attribute.String("service.name", "congkong-livescore"))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	logging.Log.Infof("TRACING: exporting spans to %s", exporter)
	return tp.Shutdown, nil
}
