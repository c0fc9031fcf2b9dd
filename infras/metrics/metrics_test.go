package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/infras/metrics"
)

func TestMetrics_ExposesCounters(t *testing.T) {
	m := metrics.New()

	m.BookingOperation("create", metrics.OutcomeSuccess)
	m.BookingOperation("create", metrics.OutcomeSuccess)
	m.SlotRejection("capacity_exceeded")
	m.GatewayCall("refund", metrics.OutcomeRetry)
	m.InconsistentState("booking.create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `wellness_booking_operations_total{operation="create",outcome="success"} 2`)
	assert.Contains(t, out, `wellness_slot_rejections_total{reason="capacity_exceeded"} 1`)
	assert.Contains(t, out, `wellness_payment_gateway_calls_total{operation="refund",outcome="retry"} 1`)
	assert.Contains(t, out, `wellness_inconsistent_state_total{operation="booking.create"} 1`)
}

func TestMetrics_InstancesAreIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New().SlotRejection("slot_conflict")
		metrics.New().SlotRejection("slot_conflict")
	})
}
