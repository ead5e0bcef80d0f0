package sokoban

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSolved     = "solved"
	resultImpossible = "impossible"
	resultLimit      = "limit"
	resultCancelled  = "cancelled"
)

var (
	// solveTotal counts solves by result
	solveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokoban_solve_total",
		Help: "Total solves by result",
	}, []string{"result"})

	// solveDuration tracks wall-clock time per solve
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sokoban_solve_duration_seconds",
		Help:    "Solve duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 18), // 0.5ms to ~65s
	}, []string{"result"})

	// solveExpanded tracks search effort per solve
	solveExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sokoban_solve_expanded_nodes",
		Help:    "Number of nodes expanded per solve",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})
)

func recordSolve(result string, elapsed time.Duration, expanded int) {
	solveTotal.WithLabelValues(result).Inc()
	solveDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	solveExpanded.Observe(float64(expanded))
}
