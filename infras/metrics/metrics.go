package metrics

//go:generate go run go.uber.org/mock/mockgen -source=./metrics.go -destination=./mocks/metrics_mock.go -package=mocks

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wellness"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeRetry   = "retry"
)

// Metrics records booking engine outcomes.
type Metrics interface {
	BookingOperation(operation, outcome string)
	SlotRejection(reason string)
	GatewayCall(operation, outcome string)
	InconsistentState(operation string)
	Handler() http.Handler
}

type prometheusMetrics struct {
	registry          *prometheus.Registry
	bookingOperations *prometheus.CounterVec
	slotRejections    *prometheus.CounterVec
	gatewayCalls      *prometheus.CounterVec
	inconsistentState *prometheus.CounterVec
}

func New() Metrics {
	registry := prometheus.NewRegistry()

	m := &prometheusMetrics{
		registry: registry,
		bookingOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		slotRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_rejections_total",
			Help:      "Slot occupancy changes refused by the capacity or exclusivity guard.",
		}, []string{"reason"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_calls_total",
			Help:      "Calls to the payment provider by outcome.",
		}, []string{"operation", "outcome"}),
		inconsistentState: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inconsistent_state_total",
			Help:      "Multi-step writes that failed after a partial write and were rolled back.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bookingOperations,
		m.slotRejections,
		m.gatewayCalls,
		m.inconsistentState,
	)

	return m
}

func (m *prometheusMetrics) BookingOperation(operation, outcome string) {
	m.bookingOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *prometheusMetrics) SlotRejection(reason string) {
	m.slotRejections.WithLabelValues(reason).Inc()
}

func (m *prometheusMetrics) GatewayCall(operation, outcome string) {
	m.gatewayCalls.WithLabelValues(operation, outcome).Inc()
}

func (m *prometheusMetrics) InconsistentState(operation string) {
	m.inconsistentState.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
