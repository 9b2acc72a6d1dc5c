package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Metrics are the Prometheus collectors the server maintains.
type Metrics struct {
	IngestRows     prometheus.Counter
	IngestDropped  prometheus.Counter
	IngestSkipped  prometheus.Counter
	Requests       *prometheus.CounterVec
	ComputeSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesdash_ingest_rows_total",
			Help: "Consolidated rows produced by ingestion.",
		}),
		IngestDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesdash_ingest_dropped_rows_total",
			Help: "Rows dropped for an empty or placeholder product.",
		}),
		IngestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesdash_ingest_skipped_files_total",
			Help: "Source files that could not be decoded.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_dashboard_requests_total",
			Help: "Dashboard computations by outcome.",
		}, []string{"outcome"}),
		ComputeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesdash_dashboard_compute_seconds",
			Help:    "Time spent filtering and aggregating one view.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	reg.MustRegister(m.IngestRows, m.IngestDropped, m.IngestSkipped, m.Requests, m.ComputeSeconds)
	return m
}

// ObserveLoad records one successful ingestion.
func (m *Metrics) ObserveLoad(ds *sales.Dataset) {
	m.IngestRows.Add(float64(len(ds.Records)))
	m.IngestDropped.Add(float64(ds.Dropped))
	m.IngestSkipped.Add(float64(len(ds.Skipped)))
}
