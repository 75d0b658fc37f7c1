// Package metrics exposes the engine's prometheus instruments, served on
// /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchfusion_searches_total",
		Help: "Searches executed, by mode and cache outcome.",
	}, []string{"mode", "cache"})

	AdapterFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchfusion_adapter_failures_total",
		Help: "Hard adapter failures observed at the orchestrator boundary.",
	}, []string{"source"})

	SourceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "searchfusion_source_latency_seconds",
		Help:    "Per-source search latency for completed calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	SweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searchfusion_cache_sweep_deleted_total",
		Help: "Expired cache entries removed by the sweeper.",
	})
)
