package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application intake service.
type Metrics struct {
	ApplicationsCreated   prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
	ApplicationsReviewed  *prometheus.CounterVec
	DocumentsUploaded     prometheus.Counter
	DocumentsVerified     prometheus.Counter
	BlobDeleteFailures    prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adopsi_applications_created_total",
			Help: "Total number of adoption applications created",
		}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adopsi_applications_submitted_total",
			Help: "Total number of applications submitted for review",
		}),
		ApplicationsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "adopsi_applications_reviewed_total",
			Help: "Total number of caseworker review decisions, by target status",
		}, []string{"status"}),
		DocumentsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adopsi_documents_uploaded_total",
			Help: "Total number of supporting documents uploaded",
		}),
		DocumentsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adopsi_documents_verified_total",
			Help: "Total number of document verification toggles",
		}),
		BlobDeleteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adopsi_blob_delete_failures_total",
			Help: "Blob deletions that failed after the metadata row was removed",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adopsi_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}

// IncrementReviewed records a review decision for the given target status.
func (m *Metrics) IncrementReviewed(status string) {
	if m == nil {
		return
	}
	m.ApplicationsReviewed.WithLabelValues(status).Inc()
}
