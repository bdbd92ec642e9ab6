// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderflow"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// OrchestrationSteps counts submission pipeline step outcomes (ok, failed, skipped).
	OrchestrationSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orchestration_steps_total",
			Help:      "Order submission pipeline step outcomes",
		},
		[]string{"step", "outcome"},
	)

	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_dispatches_total",
			Help:      "Delivery jobs submitted to courier providers",
		},
		[]string{"provider", "result"},
	)

	WebhookResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_webhooks_total",
			Help:      "Delivery status webhooks by result",
		},
		[]string{"result"},
	)

	RetryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Attempts made by the retry executor, per operation",
		},
		[]string{"operation", "outcome"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			OrchestrationSteps,
			Dispatches,
			WebhookResults,
			RetryAttempts,
		)
	})
}
