// Package telemetry holds the Prometheus metrics exported on GET /metrics.
//
// Everything registers against the default registry through promauto, so the
// metrics exist as soon as the package is imported. HTTP metrics are labelled
// with the matched ServeMux pattern (for example "GET /data-import/batch/{id}")
// rather than the raw URL to keep label cardinality bounded.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Invite lifecycle.
var (
	InvitesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnet_invites_issued_total",
			Help: "Invites issued, by source (manual or import) and user type.",
		},
		[]string{"source", "user_type"},
	)

	InvitesConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alumnet_invites_consumed_total",
			Help: "Invites consumed by a successful account creation.",
		},
	)

	InviteConsumeConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alumnet_invite_consume_conflicts_total",
			Help: "Account creations rejected because the invite was claimed concurrently or had just expired.",
		},
	)

	InvitesExpiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnet_invites_expired_total",
			Help: "Invites flagged expired, by trigger (lazy, admin or sweep).",
		},
		[]string{"trigger"},
	)
)

// Bulk import.
var (
	ImportBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnet_import_batches_total",
			Help: "Import batches reaching a terminal status, by user type and status.",
		},
		[]string{"user_type", "status"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnet_import_rows_total",
			Help: "Imported rows by outcome (issued, invalid or issue_failed).",
		},
		[]string{"outcome"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alumnet_import_duration_seconds",
			Help:    "Time to process one import batch, parse to finalisation.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Mail outbox.
var (
	MailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumnet_mail_jobs_total",
			Help: "Mail delivery attempts by outcome (sent, retry or failed).",
		},
		[]string{"outcome"},
	)

	MailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alumnet_mail_queue_depth",
			Help: "Pending mail jobs seen at the start of the last dispatch run.",
		},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request count and latency. It must wrap the ServeMux
// so the matched pattern is available once the inner handler returns.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "<no-route>"
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
