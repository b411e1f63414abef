package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec

	BoardsCreated       prometheus.Counter
	EvaluationsRecorded prometheus.Counter
	DigestsSent         *prometheus.CounterVec
	MetadataFetches     *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "achboard_http_requests_total",
			Help: "HTTP requests processed, by route, method, and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "achboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "achboard_http_errors_total",
			Help: "Request errors, by route, method, and error code.",
		}, []string{"route", "method", "code"}),
		BoardsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "achboard_boards_created_total",
			Help: "Boards created.",
		}),
		EvaluationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "achboard_evaluations_recorded_total",
			Help: "Evidence/hypothesis evaluations recorded.",
		}),
		DigestsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "achboard_digest_emails_total",
			Help: "Digest emails, by outcome (sent, skipped, failed).",
		}, []string{"outcome"}),
		MetadataFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "achboard_source_metadata_fetches_total",
			Help: "Source metadata fetch attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordRequest observes a completed HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts a request that resolved to a domain error.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(route, method, code).Inc()
}
