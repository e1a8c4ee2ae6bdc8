package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tahfidz_import_sessions_active",
		Help: "Import sessions currently held in memory.",
	})

	filesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tahfidz_import_files_parsed_total",
		Help: "Uploaded files by kind, format and outcome.",
	}, []string{"kind", "format", "outcome"})

	batchesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tahfidz_import_batches_total",
		Help: "Batches sent to the bulk-create endpoint by kind and outcome.",
	}, []string{"kind", "outcome"})

	rowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tahfidz_import_rows_total",
		Help: "Rows reported by the portal by kind and result.",
	}, []string{"kind", "result"})

	submitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tahfidz_import_submit_duration_seconds",
		Help:    "Duration of bulk-create calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"kind"})
)

func observeResult(kind string, result *ImportResult) {
	rowsImported.WithLabelValues(kind, "success").Add(float64(result.SuccessCount))
	rowsImported.WithLabelValues(kind, "failed").Add(float64(result.FailedCount))
	rowsImported.WithLabelValues(kind, "duplicate").Add(float64(result.DuplicateCount))
}
