package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_ledger_events_total",
		Help: "Ledger feed events by processing result.",
	}, []string{"result"})

	metricSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_syncs_total",
		Help: "Per-asset sync operations by outcome.",
	}, []string{"outcome"})

	metricDriftMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_drift_mismatches_total",
		Help: "Holdings found diverging from the ledger by drift detection.",
	})

	metricMonitoredAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reconcile_monitored_assets",
		Help: "Number of assets currently monitored.",
	})

	metricDroppedEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reconcile_dropped_events",
		Help: "Events dropped on full subscriber queues since start.",
	})
)

const (
	resultApplied     = "applied"
	resultDuplicate   = "duplicate"
	resultBuffered    = "buffered"
	resultStale       = "stale"
	resultUnmonitored = "unmonitored"
	resultOverflow    = "overflow"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)
