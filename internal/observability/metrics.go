package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "explorer_dataset_rows",
		Help: "Number of rows held for each dataset after cleanup",
	}, []string{"dataset"})

	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_dataset_rows_dropped_total",
		Help: "Rows discarded during load because of missing or malformed values",
	}, []string{"dataset"})

	LoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "explorer_dataset_load_duration_seconds",
		Help:    "Time spent parsing and cleaning a dataset",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"dataset"})

	DatasetReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_dataset_reloads_total",
		Help: "Dataset context builds by outcome",
	}, []string{"status"})

	FilterEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_filter_evaluations_total",
		Help: "Filter engine evaluations per dataset",
	}, []string{"dataset"})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "explorer_render_duration_seconds",
		Help:    "Duration of a controller render cycle by active tab",
		Buckets: prometheus.DefBuckets,
	}, []string{"tab"})
)

// Reload outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
