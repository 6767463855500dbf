// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CopyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_copy_requests_total",
			Help: "Total number of copy requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CopyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sync_copy_request_duration_seconds",
			Help: "Duration of copy request processing in seconds",
		},
		[]string{"operation"},
	)

	TemplatesReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_templates_reconciled_total",
			Help: "Templates reconciled into target versions by action",
		},
		[]string{"action"},
	)

	TemplateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_template_failures_total",
			Help: "Per-template reconciliation failures by error code",
		},
		[]string{"error_code"},
	)

	CatalogIndexFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_catalog_index_failures_total",
			Help: "Catalog index updates that failed after a copy",
		},
	)
)
