// Package metrics exposes prometheus instruments for document ingestion.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the ingestion instruments.
type Metrics struct {
	DocumentsTotal  *prometheus.CounterVec
	FieldsExtracted *prometheus.HistogramVec
	TierFields      *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
}

// New returns the process-wide Metrics, registering them on first use.
//
// Metrics:
//   - intake_documents_total{path,status}
//   - intake_fields_extracted{path}
//   - intake_tier_fields_total{path,tier}
//   - intake_document_duration_seconds{path}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			DocumentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intake_documents_total",
					Help: "Documents processed, by ingestion path and response status",
				},
				[]string{"path", "status"},
			),
			FieldsExtracted: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "intake_fields_extracted",
					Help:    "Populated fields per extracted document",
					Buckets: prometheus.LinearBuckets(0, 2, 11),
				},
				[]string{"path"},
			),
			TierFields: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intake_tier_fields_total",
					Help: "Fields set by each extraction tier",
				},
				[]string{"path", "tier"},
			),
			Duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "intake_document_duration_seconds",
					Help:    "End-to-end processing time per document",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"path"},
			),
		}
	})
	return globalMetrics
}
