package openapi_server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stepsTotal counts performed steps by algorithm
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathfinding_steps_total",
		Help: "Total performed search steps by algorithm",
	}, []string{"algorithm"})

	// searchesTotal counts finished searches by algorithm and outcome
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathfinding_searches_finished_total",
		Help: "Total finished searches by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	// stepBatchDuration tracks the latency of one step request
	stepBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pathfinding_step_batch_duration_seconds",
		Help:    "Duration of a step request in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"algorithm"})

	// regionNodes tracks the size of the session graphs
	regionNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathfinding_region_nodes",
		Help:    "Number of nodes of the region graph of a session",
		Buckets: []float64{10, 100, 1000, 10000, 100000},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathfinding_active_sessions",
		Help: "Number of stored search sessions",
	})
)
