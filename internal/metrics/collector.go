// Package metrics exports Prometheus metrics for the validation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector collects and exports metrics for the validation engine
type Collector struct {
	validationsTotal   *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	findingsTotal      *prometheus.CounterVec
	parseFailuresTotal *prometheus.CounterVec
	catalogEntries     *prometheus.GaugeVec
	uploadsTotal       *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		validationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rips_engine_validations_total",
				Help: "Total number of file validations",
			},
			[]string{"record_type", "format", "status"},
		),
		validationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rips_engine_validation_duration_seconds",
				Help:    "File validation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"record_type", "format"},
		),
		findingsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rips_engine_findings_total",
				Help: "Total validation findings emitted",
			},
			[]string{"record_type", "severity"},
		),
		parseFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rips_engine_parse_failures_total",
				Help: "Files rejected at the parser boundary",
			},
			[]string{"format"},
		),
		catalogEntries: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rips_engine_catalog_entries",
				Help: "Entries loaded per catalog",
			},
			[]string{"catalog"},
		),
		uploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rips_engine_uploads_total",
				Help: "Files received through the upload endpoint",
			},
			[]string{"record_type"},
		),
	}
}

// RecordValidation records one completed validation run
func (c *Collector) RecordValidation(recordType, format, status string, duration time.Duration) {
	c.validationsTotal.WithLabelValues(recordType, format, status).Inc()
	c.validationDuration.WithLabelValues(recordType, format).Observe(duration.Seconds())
}

// RecordFindings records emitted findings by severity
func (c *Collector) RecordFindings(recordType, severity string, count int) {
	if count > 0 {
		c.findingsTotal.WithLabelValues(recordType, severity).Add(float64(count))
	}
}

// RecordParseFailure records a file rejected before record extraction
func (c *Collector) RecordParseFailure(format string) {
	c.parseFailuresTotal.WithLabelValues(format).Inc()
}

// SetCatalogSizes publishes current catalog sizes
func (c *Collector) SetCatalogSizes(cie10, cie11, cups, correspondence int) {
	c.catalogEntries.WithLabelValues("cie10").Set(float64(cie10))
	c.catalogEntries.WithLabelValues("cie11").Set(float64(cie11))
	c.catalogEntries.WithLabelValues("cups").Set(float64(cups))
	c.catalogEntries.WithLabelValues("correspondence").Set(float64(correspondence))
}

// RecordUpload records one received upload
func (c *Collector) RecordUpload(recordType string) {
	c.uploadsTotal.WithLabelValues(recordType).Inc()
}
