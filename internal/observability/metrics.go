package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_guidance_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loan_guidance_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	Assessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_guidance_assessments_total",
		Help: "Completed assessments by risk level.",
	}, []string{"risk_level"})

	ScorerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_guidance_scorer_errors_total",
		Help: "Scorer failures by scorer and kind (unavailable, bad_response).",
	}, []string{"scorer", "kind"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_guidance_cache_lookups_total",
		Help: "Assessment cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	ModelRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_guidance_model_refreshes_total",
		Help: "Model artifact refresh attempts by outcome (updated, unchanged, failed).",
	}, []string{"outcome"})
)

// MetricsHandler exposes the default registry for /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
