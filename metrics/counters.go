package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

/* Counters are the push-side metrics incremented by the delivery engine
 * as attempts happen. The pull-side snapshot lives in Collector.
 */
type Counters struct {
	AttemptsTotal   *prometheus.CounterVec
	DeliveriesTotal *prometheus.CounterVec
	AttemptDuration prometheus.Histogram
}

// NewCounters creates and registers the engine counters.
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{
		AttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_delivery_attempts_total",
			Help: "Delivery attempts by outcome (success, endpoint_error, network_error).",
		}, []string{"outcome"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Deliveries reaching a terminal status (delivered, exhausted, error).",
		}, []string{"status"}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webhook_delivery_attempt_duration_seconds",
			Help:    "Duration of individual delivery attempts.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.AttemptsTotal, c.DeliveriesTotal, c.AttemptDuration)
	return c
}

// ObserveAttempt records one attempt's outcome and duration.
func (c *Counters) ObserveAttempt(outcome string, seconds float64) {
	c.AttemptsTotal.WithLabelValues(outcome).Inc()
	c.AttemptDuration.Observe(seconds)
}

// ObserveTerminal records a delivery reaching a terminal status.
func (c *Counters) ObserveTerminal(status string) {
	c.DeliveriesTotal.WithLabelValues(status).Inc()
}
