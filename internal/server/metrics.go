package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus counters of the recommendation service.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Degraded      prometheus.Counter
	LowConfidence prometheus.Counter
	Duration      prometheus.Histogram
}

// NewMetrics builds and registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Recommendation requests by outcome.",
		}, []string{"status"}),
		Degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommender_degraded_total",
			Help: "Requests served with one retriever down.",
		}),
		LowConfidence: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommender_low_confidence_total",
			Help: "Requests that returned fewer than the minimum result count.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_request_duration_seconds",
			Help:    "End to end recommendation latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Requests, m.Degraded, m.LowConfidence, m.Duration)
	return m
}
