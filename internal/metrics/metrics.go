// Package metrics exposes the engine's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotHits counts store reads that found a snapshot, by kind.
	SnapshotHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gwrecap_snapshot_hits_total",
		Help: "Snapshot store reads that found a cached snapshot.",
	}, []string{"kind"})

	// SnapshotMisses counts store reads that found nothing, by kind.
	SnapshotMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gwrecap_snapshot_misses_total",
		Help: "Snapshot store reads that found no cached snapshot.",
	}, []string{"kind"})

	// Fetches counts upstream API requests, by endpoint and outcome.
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gwrecap_fetches_total",
		Help: "Upstream FPL API requests.",
	}, []string{"endpoint", "outcome"})

	// ReportsBuilt counts gameweek reports assembled.
	ReportsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gwrecap_reports_built_total",
		Help: "Gameweek reports assembled.",
	})

	// ManagersSkipped counts managers dropped from a report, by reason.
	ManagersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gwrecap_managers_skipped_total",
		Help: "Managers skipped during report aggregation.",
	}, []string{"reason"})
)
