package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreRequests counts remote store calls made by the portal.
	StoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuslink_store_requests_total",
		Help: "Remote store calls by collection, method and outcome.",
	}, []string{"collection", "method", "outcome"})

	// PollCycles counts resource refreshes.
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuslink_poll_cycles_total",
		Help: "Resource refresh cycles by resource key and result.",
	}, []string{"resource", "result"})

	// BusSignals counts published change signals.
	BusSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuslink_bus_signals_total",
		Help: "Change signals delivered by topic and origin.",
	}, []string{"topic", "origin"})

	// GateAuthorized is 1 while a protected area is unlocked.
	GateAuthorized = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "campuslink_gate_authorized",
		Help: "Protected area state (1 authorized, 0 placeholder).",
	}, []string{"gate"})

	// CollectionOps counts store server operations.
	CollectionOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuslink_collection_ops_total",
		Help: "Store server operations by collection, op and status code.",
	}, []string{"collection", "op", "code"})
)
