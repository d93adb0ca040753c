package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Tracks the number of HTTP requests.",
	}, []string{"code"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Tracks the latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	})

	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Requests sent to the posting backend by operation and status.",
	}, []string{"operation", "code"})

	backendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of requests sent to the posting backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	likeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimistic_like_outcomes_total",
		Help: "Optimistic like/unlike results: confirmed, reconciled or rolled_back.",
	}, []string{"result"})
)

func GetRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestsTotal,
		requestDuration,
		backendRequests,
		backendDuration,
		likeOutcomes,
	)

	return registry
}

func ObserveRequest(code string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(code).Inc()
	requestDuration.Observe(elapsed.Seconds())
}

func ObserveBackendRequest(operation, code string, elapsed time.Duration) {
	backendRequests.WithLabelValues(operation, code).Inc()
	backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveLikeOutcome(result string) {
	likeOutcomes.WithLabelValues(result).Inc()
}
