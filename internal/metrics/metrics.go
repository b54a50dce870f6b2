// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gosubfetch",
		Name:      "runs_total",
		Help:      "Total pipeline runs by terminal state.",
	}, []string{"state"})

	StageFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gosubfetch",
		Name:      "stage_failures_total",
		Help:      "Total failed pipeline runs by the stage that failed.",
	}, []string{"stage"})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gosubfetch",
		Name:      "run_duration_seconds",
		Help:      "Duration of non-skipped pipeline runs in seconds.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	CatalogLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gosubfetch",
		Name:      "catalog_lookups_total",
		Help:      "Catalog id lookups by the layer that answered (cache, store, search, miss).",
	}, []string{"source"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gosubfetch",
		Name:      "provider_requests_total",
		Help:      "Total requests to upstream sites by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gosubfetch",
		Name:      "provider_request_duration_seconds",
		Help:      "Upstream page request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"provider"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gosubfetch",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gosubfetch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "route"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RunsTotal,
		StageFailuresTotal,
		RunDuration,
		CatalogLookupsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ObserveProvider records one upstream request that started at start.
func ObserveProvider(provider string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
