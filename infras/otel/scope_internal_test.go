package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"wellness/shared/failure"
)

func recordSpan(t *testing.T, fn func(Scope)) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "booking.Create")
	scope := NewScope(span)
	fn(scope)
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	return spans[0]
}

func TestScope_TraceError(t *testing.T) {
	t.Run("rejection keeps the span ok", func(t *testing.T) {
		span := recordSpan(t, func(s Scope) {
			s.TraceError(failure.CapacityExceeded(1, 2))
		})

		assert.Equal(t, codes.Unset, span.Status().Code)
		require.Len(t, span.Events(), 1)
		assert.Equal(t, eventRejected, span.Events()[0].Name)
	})

	t.Run("server fault marks the span", func(t *testing.T) {
		span := recordSpan(t, func(s Scope) {
			s.TraceError(errors.New("connection refused"))
		})

		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "connection refused", span.Status().Description)
	})

	t.Run("nil is ignored", func(t *testing.T) {
		span := recordSpan(t, func(s Scope) {
			s.TraceIfError(nil)
		})

		assert.Equal(t, codes.Unset, span.Status().Code)
		assert.Empty(t, span.Events())
	})
}

func TestScope_SetAttributes(t *testing.T) {
	span := recordSpan(t, func(s Scope) {
		s.SetAttributes(map[string]any{
			"booking.guests": 3,
			"booking.amount": int64(4500),
			"booking.paid":   true,
			"slot.ids":       []string{"s-1", "s-2"},
		})
	})

	got := map[string]string{}
	for _, kv := range span.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "3", got["booking.guests"])
	assert.Equal(t, "4500", got["booking.amount"])
	assert.Equal(t, "true", got["booking.paid"])
	assert.Equal(t, `["s-1","s-2"]`, got["slot.ids"])
}
