package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PolicyDecisions counts authorization evaluations and their outcome (allow|deny).
	PolicyDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_policy_decisions_total",
			Help: "Total number of policy decisions",
		},
		[]string{"action", "result"},
	)

	// PhotoUploads counts uploaded photo files.
	PhotoUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_photo_uploads_total",
			Help: "Total number of photo files stored",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
