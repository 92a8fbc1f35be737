// Package metrics exports safetrack counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_alerts_created_total",
			Help: "Alerts accepted by the alert store",
		},
		[]string{"status", "severity"},
	)

	AlertDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safetrack_alert_duplicates_total",
			Help: "Alert submissions rejected because the id already exists",
		},
	)

	AlertsArchived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_alerts_archived_total",
			Help: "Alerts moved from the active collection to the archive",
		},
		[]string{"reason"},
	)

	// ArchiveDropped counts archived alerts permanently lost to the archive cap.
	ArchiveDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safetrack_archive_dropped_total",
			Help: "Archived alerts dropped because the archive cap was exceeded",
		},
	)

	StorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_storage_failures_total",
			Help: "Failed reads and writes against the key-value store",
		},
		[]string{"op", "key"},
	)

	ActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safetrack_active_alerts",
			Help: "Size of the active alert collection after the last write",
		},
	)

	Polls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_polls_total",
			Help: "Telemetry poll cycles",
		},
		[]string{"result"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safetrack_poll_duration_seconds",
			Help:    "Duration of a full poll cycle including detection",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	ReadingsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_readings_discarded_total",
			Help: "Telemetry records rejected by the parser",
		},
		[]string{"reason"},
	)

	TelemetryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safetrack_telemetry_cache_hits_total",
			Help: "Telemetry reads served from the short-lived cache",
		},
	)

	TelemetryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safetrack_telemetry_cache_misses_total",
			Help: "Telemetry reads that went to the remote endpoint",
		},
	)

	Emails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safetrack_emails_total",
			Help: "Alert notification send attempts",
		},
		[]string{"result"},
	)
)
