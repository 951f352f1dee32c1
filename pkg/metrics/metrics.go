// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebhooksTotal tracks inbound webhook events by outcome.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_total",
			Help: "Inbound webhook events by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// DraftsCreated tracks pending drafts stored for approval.
	DraftsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_created_total",
			Help: "Pending drafts created and awaiting approval",
		},
	)

	// DraftsSent tracks drafts delivered to guests.
	DraftsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drafts_sent_total",
			Help: "Drafts delivered to guests",
		},
		[]string{"edited"},
	)

	// DraftsEvicted tracks stale drafts removed by the eviction tick.
	DraftsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_evicted_total",
			Help: "Stale pending drafts evicted",
		},
	)

	// GenerationDuration tracks draft generation duration.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draft_generation_duration_seconds",
			Help:    "Draft generation duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"outcome"},
	)

	// ToolCallsTotal tracks tool executions requested by the model.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Tool executions requested by the drafting agent",
		},
		[]string{"tool"},
	)

	// DeliveriesTotal tracks outbound guest message deliveries.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_deliveries_total",
			Help: "Outbound guest message delivery attempts",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordWebhook records an inbound webhook event.
func RecordWebhook(source, outcome string) {
	WebhooksTotal.WithLabelValues(source, outcome).Inc()
}

// RecordGeneration records a draft generation attempt.
func RecordGeneration(outcome string, seconds float64) {
	GenerationDuration.WithLabelValues(outcome).Observe(seconds)
}
