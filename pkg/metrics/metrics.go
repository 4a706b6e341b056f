// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// HTTPRequestsTotal counts handled requests by method, route pattern and status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency by method and route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// PolicyDecisionsTotal counts post authorization outcomes.
// Labels:
//   - operation: "update" or "delete"
//   - decision: "full_replace", "topic_only", "deny" for updates; "allow", "deny" for deletes
var PolicyDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_policy_decisions_total",
		Help:      "Total number of post authorization decisions.",
	},
	[]string{"operation", "decision"},
)

// EventsPublishedTotal counts broker publishes by routing key and result.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of post events handed to the broker.",
	},
	[]string{"routing_key", "result"},
)
