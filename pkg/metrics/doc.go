/*
Package metrics provides Prometheus metrics and preflight health status
for Burrow.

Burrow is a one-shot command, so nothing is served over HTTP.
Metrics are collected into the default registry while a run executes and,
when --metrics-textfile is given, written out at the end for the
node_exporter textfile collector.

# Metrics

Reconcile:
  - burrow_reconcile_total{kind,action}: objects reconciled
  - burrow_reconcile_errors_total{kind}: failed reconcile calls
  - burrow_reconcile_duration_seconds{kind}: time per object

Membership:
  - burrow_membership_decisions_total{decision,action}

pcs:
  - burrow_pcs_command_duration_seconds{verb}
  - burrow_pcs_command_failures_total{verb}
  - burrow_pcs_command_retries_total: CIB replace timeout retries

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ReconcileDuration, "resource")

# Health

`burrow doctor` registers one component per preflight check (pcs
version, CIB readable, pcsd reachable on each peer). GetReadiness only
considers CriticalComponents.
*/
package metrics
