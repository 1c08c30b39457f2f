package service

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Publisher broadcasts a document after it has been persisted.
// realtime.Hub is the production implementation.
type Publisher interface {
	Publish(name, key string, doc any) error
	Forget(name string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) error { return nil }
func (nopPublisher) Forget(string)                      {}

var tracer = otel.Tracer("livescore-service")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
