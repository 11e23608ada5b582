package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// CheckMetrics records extraction and scoring outcomes. It is shared by the
// API, the worker and the MCP server, each on its own registry.
type CheckMetrics struct {
	checksTotal     *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	score           *prometheus.HistogramVec
	degradedPages   prometheus.Counter
	blobUploads     *prometheus.CounterVec
	upstreamRetries *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func newCheckMetrics(registry prometheus.Registerer, service string) *CheckMetrics {
	constLabels := prometheus.Labels{"service": service}

	m := &CheckMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "checks_total",
				Help:        "Completed compliance checks by detected format.",
				ConstLabels: constLabels,
			},
			[]string{"format"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "check_duration_seconds",
				Help:        "Extraction plus scoring duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"format"},
		),
		score: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "score",
				Help:        "Distribution of compliance scores (0-100).",
				Buckets:     []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
				ConstLabels: constLabels,
			},
			[]string{"format"},
		),
		degradedPages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pdf",
				Name:        "degraded_pages_total",
				Help:        "PDF pages that failed extraction and contributed empty text.",
				ConstLabels: constLabels,
			},
		),
		blobUploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "blob_uploads_total",
				Help:        "Upload attempts to the blob store by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"status"},
		),
		upstreamRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "upstream",
				Name:        "retries_total",
				Help:        "Retried calls to storage and queue dependencies.",
				ConstLabels: constLabels,
			},
			[]string{"operation"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "upstream",
				Name:        "circuit_open",
				Help:        "1 while the circuit breaker for an operation is not closed.",
				ConstLabels: constLabels,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.score,
		m.degradedPages,
		m.blobUploads,
		m.upstreamRetries,
		m.breakerState,
	)
	return m
}

func (m *CheckMetrics) ObserveCheck(format domain.DocumentFormat, report domain.ComplianceReport, duration time.Duration) {
	label := string(format)
	if label == "" {
		label = "unknown"
	}
	m.checksTotal.WithLabelValues(label).Inc()
	m.checkDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.score.WithLabelValues(label).Observe(report.Score)
}

func (m *CheckMetrics) ObserveBlobUpload(status string) {
	if status == "" {
		status = "unknown"
	}
	m.blobUploads.WithLabelValues(status).Inc()
}

func (m *CheckMetrics) RecordDegradedPage() {
	m.degradedPages.Inc()
}

func (m *CheckMetrics) ObserveRetry(operation string) {
	m.upstreamRetries.WithLabelValues(operation).Inc()
}

func (m *CheckMetrics) ObserveBreakerState(operation string, state string) {
	open := 0.0
	if state != "closed" {
		open = 1
	}
	m.breakerState.WithLabelValues(operation).Set(open)
}
