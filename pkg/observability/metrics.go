// Package observability provides Prometheus metrics instrumentation for the
// engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandrel_runs_total",
			Help: "Total number of plan executions",
		},
		[]string{"status"}, // completed, partial_failure
	)

	runDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mandrel_run_duration_seconds",
			Help:    "Plan execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"status"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandrel_steps_total",
			Help: "Total number of executed plan steps",
		},
		[]string{"kind", "status"}, // status: confirmed, aborted
	)

	kernelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandrel_kernel_calls_total",
			Help: "Total number of kernel collaborator calls",
		},
		[]string{"op", "status"}, // status: ok, error
	)
)

// RecordRun records the outcome of one full plan execution.
func RecordRun(status string, durationMS int) {
	runsTotal.WithLabelValues(status).Inc()
	runDurationSeconds.WithLabelValues(status).Observe(float64(durationMS) / 1000.0)
}

// RecordStep records the outcome of one plan step.
func RecordStep(kind string, status string) {
	stepsTotal.WithLabelValues(kind, status).Inc()
}

// RecordKernelCall records one call into the kernel collaborator.
func RecordKernelCall(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	kernelCallsTotal.WithLabelValues(op, status).Inc()
}
