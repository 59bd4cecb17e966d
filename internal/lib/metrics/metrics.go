// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	HTTPDuration      *prometheus.HistogramVec
	Mutations         *prometheus.CounterVec
	AIRequests        *prometheus.CounterVec
	LiveSubscriptions *prometheus.GaugeVec
	SessionChanges    *prometheus.CounterVec
}

// New registers collectors on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "padayon",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "padayon",
			Name:      "mutations_total",
			Help:      "Mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "padayon",
			Name:      "ai_requests_total",
			Help:      "Generative requests by variant and outcome.",
		}, []string{"variant", "outcome"}),
		LiveSubscriptions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "padayon",
			Name:      "live_subscriptions",
			Help:      "Open live collection subscriptions.",
		}, []string{"collection"}),
		SessionChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "padayon",
			Name:      "session_changes_total",
			Help:      "Published session changes by kind and entitlement.",
		}, []string{"kind", "entitlement"}),
	}
}

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeFallback = "fallback"
)
