package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks checkout and fulfillment activity.
type OrderMetrics struct {
	ordersPlaced       prometheus.Counter
	placementFailures  *prometheus.CounterVec
	placementDuration  prometheus.Histogram
	statusTransitions  *prometheus.CounterVec
	paymentTransitions *prometheus.CounterVec
	restockedUnits     prometheus.Counter
}

// NewOrderMetrics registers the order metrics with the default registerer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer registers the order metrics with registerer. Metrics that
// are already registered are reused.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		})),
		placementFailures: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_placement_failures_total",
			Help: "Total number of rejected order placements by failure code",
		}, []string{"code"})),
		placementDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		})),
		statusTransitions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_status_transitions_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"status"})),
		paymentTransitions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_status_transitions_total",
			Help: "Total number of payment status transitions by target status",
		}, []string{"status"})),
		restockedUnits: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_stock_restocked_units_total",
			Help: "Total number of product units returned to stock by cancellations",
		})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderPlaced counts a committed order and observes how long placement took.
func (m *OrderMetrics) RecordOrderPlaced(duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.placementDuration.Observe(duration.Seconds())
}

// RecordPlacementFailure counts a rejected placement.
func (m *OrderMetrics) RecordPlacementFailure(code string) {
	if m == nil {
		return
	}
	m.placementFailures.WithLabelValues(code).Inc()
}

// RecordStatusTransition counts an order status change.
func (m *OrderMetrics) RecordStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

// RecordPaymentTransition counts a payment status change.
func (m *OrderMetrics) RecordPaymentTransition(status string) {
	if m == nil {
		return
	}
	m.paymentTransitions.WithLabelValues(status).Inc()
}

// RecordRestock counts units returned to stock.
func (m *OrderMetrics) RecordRestock(units int) {
	if m == nil {
		return
	}
	m.restockedUnits.Add(float64(units))
}
