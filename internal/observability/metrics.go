package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideservice", Name: "ledger_submissions_total", Help: "Ledger transaction submissions by method and outcome"},
		[]string{"method", "outcome"},
	)
	LedgerSubmitLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{Namespace: "rideservice", Name: "ledger_submit_latency_seconds", Help: "Ledger submission round-trip latency", Buckets: prometheus.DefBuckets},
	)
	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideservice", Name: "events_dispatched_total", Help: "Decoded ledger events handled by kind"},
		[]string{"kind"},
	)
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideservice", Name: "events_dropped_total", Help: "Ledger events dropped after decode or handler failure"},
		[]string{"kind"},
	)
	EventsDuplicateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideservice", Name: "events_duplicate_total", Help: "Redelivered ledger events collapsed by the idempotency key"},
		[]string{"kind"},
	)
)
