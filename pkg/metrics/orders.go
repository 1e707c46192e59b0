package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess           = "success"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidState      = "invalid_state"
	OutcomeError             = "error"
)

// OrderMetrics records checkout and cancellation activity.
type OrderMetrics struct {
	checkouts     *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	unitsSold     prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	cancellations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_order_cancellations_total",
		Help: "Order cancellation attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_order_operation_duration_seconds",
		Help:    "Duration of order operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_units_sold_total",
		Help: "Product units committed by successful checkouts.",
	})
	reg.MustRegister(checkouts, cancellations, duration, unitsSold)
	return &OrderMetrics{
		checkouts:     checkouts,
		cancellations: cancellations,
		duration:      duration,
		unitsSold:     unitsSold,
	}
}

// ObserveCheckout records a checkout attempt.
func (m *OrderMetrics) ObserveCheckout(outcome string, units int, took time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues("checkout").Observe(took.Seconds())
	if outcome == OutcomeSuccess && units > 0 {
		m.unitsSold.Add(float64(units))
	}
}

// ObserveCancel records a cancellation attempt.
func (m *OrderMetrics) ObserveCancel(outcome string, took time.Duration) {
	if m == nil || m.cancellations == nil {
		return
	}
	m.cancellations.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues("cancel").Observe(took.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
