package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VisitsOpened counts successful check-ins (new OPEN records)
	VisitsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldvisit_visits_opened_total",
		Help: "Total number of visit sessions opened",
	})

	// VisitsClosed counts successful check-outs
	VisitsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldvisit_visits_closed_total",
		Help: "Total number of visit sessions closed",
	})

	// SessionRejections counts guard failures by reason (duplicate_open / no_open)
	SessionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldvisit_session_rejections_total",
		Help: "Total number of rejected session operations",
	}, []string{"reason"})

	// StorageFailures counts load/save failures against the visit log
	StorageFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldvisit_storage_failures_total",
		Help: "Total number of visit log storage failures",
	})

	// DwellSeconds observes dwell time of closed visits
	DwellSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldvisit_dwell_seconds",
		Help:    "Dwell time of closed visits in seconds",
		Buckets: []float64{300, 900, 1800, 3600, 7200, 14400, 28800, 86400},
	})

	// BackupRuns counts backup upload attempts by status (ok / error / skipped)
	BackupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldvisit_backup_runs_total",
		Help: "Total number of backup upload attempts",
	}, []string{"status"})
)
