package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Reconcile metrics
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_reconcile_total",
			Help: "Total number of reconciled cluster objects by kind and action",
		},
		[]string{"kind", "action"},
	)

	ReconcileErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_reconcile_errors_total",
			Help: "Total number of failed reconcile calls by kind",
		},
		[]string{"kind"},
	)

	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_reconcile_duration_seconds",
			Help:    "Time taken to reconcile one cluster object",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Membership metrics
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_membership_decisions_total",
			Help: "Total number of membership decisions by kind and action",
		},
		[]string{"decision", "action"},
	)

	// pcs command metrics
	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_pcs_command_duration_seconds",
			Help:    "pcs command latency by verb",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"verb"},
	)

	CommandFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_pcs_command_failures_total",
			Help: "Total number of pcs commands that exited non-zero, by verb",
		},
		[]string{"verb"},
	)

	CommandRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_pcs_command_retries_total",
			Help: "Total number of pcs commands retried after a CIB replace timeout",
		},
	)
)

func init() {
	prometheus.MustRegister(ReconcileTotal)
	prometheus.MustRegister(ReconcileErrors)
	prometheus.MustRegister(ReconcileDuration)
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(CommandFailures)
	prometheus.MustRegister(CommandRetries)
}

// WriteTextfile writes every registered metric to path in the text
// exposition format read by the node_exporter textfile collector
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
