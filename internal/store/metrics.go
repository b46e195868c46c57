package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appstate_dispatch_total",
			Help: "Total number of actions dispatched to the state store",
		},
		[]string{"action"},
	)

	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appstate_fetch_total",
			Help: "Slice fetch operations by observed phase",
		},
		[]string{"slice", "phase"},
	)

	persistTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appstate_persist_total",
			Help: "Total number of snapshot writes attempted",
		},
	)

	persistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appstate_persist_failures_total",
			Help: "Snapshot writes that failed (persistence is best-effort)",
		},
	)

	rehydrateFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appstate_rehydrate_fallback_total",
			Help: "Slices that fell back to defaults during rehydration",
		},
		[]string{"slice"},
	)
)

const (
	phasePending   = "pending"
	phaseFulfilled = "fulfilled"
	phaseRejected  = "rejected"
	phaseStale     = "stale"
)
