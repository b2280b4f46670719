package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/sleepq/cascade"
)

// Metrics counts predictions by the tier that answered and notices by the
// tier that was skipped.
type Metrics struct {
	predictions *prometheus.CounterVec
	notices     *prometheus.CounterVec
	rejected    prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with registerer when
// it is non-nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleepq_predictions_total",
			Help: "Predictions served, by answering source",
		}, []string{"source"}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleepq_degradations_total",
			Help: "Tiers skipped during a prediction, by source and error kind",
		}, []string{"source", "kind"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepq_invalid_requests_total",
			Help: "Requests rejected because the feature input was invalid",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sleepq_prediction_duration_seconds",
			Help:    "Time to resolve a prediction through the cascade",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.predictions, m.notices, m.rejected, m.duration)
	}
	return m
}

// Observe records a resolved outcome.
func (m *Metrics) Observe(o cascade.Outcome, seconds float64) {
	m.predictions.WithLabelValues(string(o.Source)).Inc()
	for _, n := range o.Notices {
		m.notices.WithLabelValues(string(n.Source), n.Kind).Inc()
	}
	m.duration.Observe(seconds)
}

// Rejected records an invalid request.
func (m *Metrics) Rejected() {
	m.rejected.Inc()
}
