package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the three core engines.
var (
	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Total number of checkout requests by outcome",
		},
		[]string{"outcome"},
	)

	CheckoutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	StockAdjustmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Total number of warehouse stock adjustments by outcome",
		},
		[]string{"outcome"},
	)

	OrderUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_updates_total",
			Help: "Total number of order lifecycle updates by outcome",
		},
		[]string{"outcome"},
	)

	StockRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_rollbacks_total",
			Help: "Total number of checkout stock rollbacks performed",
		},
	)

	EventPublishFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Total number of failed broker publishes by topic",
		},
		[]string{"topic"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(CheckoutsTotal)
	prometheus.MustRegister(CheckoutDuration)
	prometheus.MustRegister(StockAdjustmentsTotal)
	prometheus.MustRegister(OrderUpdatesTotal)
	prometheus.MustRegister(StockRollbacksTotal)
	prometheus.MustRegister(EventPublishFailuresTotal)
}
