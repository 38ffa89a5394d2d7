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
	reviewsTotal    *prometheus.CounterVec
	uploadsTotal    prometheus.Counter
	uploadBytes     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
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

	reviewsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_total",
		Help: "Total review verdicts recorded",
	}, []string{"resource", "verdict"})

	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Total stored attachments",
	})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "upload_bytes_total",
		Help: "Total bytes of stored attachments",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, reviewsTotal, uploadsTotal, uploadBytes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		reviewsTotal:    reviewsTotal,
		uploadsTotal:    uploadsTotal,
		uploadBytes:     uploadBytes,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordReview counts a review verdict.
func (m *MetricsService) RecordReview(resource, verdict string) {
	if m == nil {
		return
	}
	m.reviewsTotal.WithLabelValues(resource, verdict).Inc()
}

// RecordUpload counts a stored attachment.
func (m *MetricsService) RecordUpload(size int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.Inc()
	if size > 0 {
		m.uploadBytes.Add(float64(size))
	}
}
