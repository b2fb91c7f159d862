package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	aiCalls         *prometheus.CounterVec
	aiLatency       *prometheus.HistogramVec
}

// NewMetricsService registers the API's Prometheus collectors on a private
// registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Total dashboard cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Total dashboard cache misses",
	})

	aiCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_calls_total",
		Help: "Total chat-completion calls by operation and outcome",
	}, []string{"operation", "outcome"})

	aiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_call_duration_seconds",
		Help:    "Duration of chat-completion calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, aiCalls, aiLatency, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		aiCalls:         aiCalls,
		aiLatency:       aiLatency,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts a dashboard cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordAICall counts one chat-completion round trip by outcome.
func (m *MetricsService) RecordAICall(operation, outcome string) {
	if m == nil {
		return
	}
	m.aiCalls.WithLabelValues(operation, outcome).Inc()
}

// ObserveAILatency records how long a chat-completion call took.
func (m *MetricsService) ObserveAILatency(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.aiLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
