package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluateLatency measures end-to-end evaluation time per event.
	// Labels: status (ok, invalid_event)
	evaluateLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "percolate",
		Subsystem: "evaluate",
		Name:      "latency_seconds",
		Help:      "Event evaluation latency in seconds",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"status"})

	// evaluateMatches tracks how many expressions matched per event.
	evaluateMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "percolate",
		Subsystem: "evaluate",
		Name:      "matches",
		Help:      "Distribution of matching expression counts per event",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	// expressionOps counts corpus mutations.
	// Labels: op (insert, remove), status (ok, rejected, error)
	expressionOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "percolate",
		Subsystem: "corpus",
		Name:      "expression_ops_total",
		Help:      "Total expression insert and remove operations",
	}, []string{"op", "status"})

	// compileErrors counts rejected expressions by failure class.
	// Labels: reason (syntax, unknown_field, type_mismatch, out_of_range,
	// invalid_operator, limit)
	compileErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "percolate",
		Subsystem: "corpus",
		Name:      "compile_errors_total",
		Help:      "Total expression compilation failures by reason",
	}, []string{"reason"})
)
