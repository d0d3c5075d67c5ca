// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DiffsRecorded counts history diffs written, by diff type.
	DiffsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quire_history_diffs_recorded_total",
		Help: "History diffs written by type",
	}, []string{"type"})

	// VersionsRecorded counts daily version snapshots taken.
	VersionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quire_history_versions_recorded_total",
		Help: "History version snapshots taken",
	})

	// StampChanges counts stamping substitutions, by element kind.
	StampChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quire_stamp_changes_total",
		Help: "Stamping substitutions applied by element kind",
	}, []string{"kind"})

	// NoteMutations counts note writes through the service, by operation.
	NoteMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quire_note_mutations_total",
		Help: "Note mutations by operation",
	}, []string{"op"})

	// ScanDuration tracks element scans over the notes tree.
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quire_scan_duration_seconds",
		Help:    "Element scan duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"element"})
)

// ObserveScan records the duration of a scan started at start.
func ObserveScan(element string, start time.Time) {
	ScanDuration.WithLabelValues(element).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
