/*
Package types defines the core data structures used throughout Burrow.

The types in this package describe the three things Burrow reasons about:
what each host reported about its cluster before the run, what the
operator wants the cluster to look like, and what Burrow decided or did
about it. Every other package exchanges these values; none of them carry
behaviour beyond small helpers.

# Core Types

Membership:

  - ClusterFact: per host snapshot (cluster present, detected node names)
  - DesiredMembership: wanted node set, add/remove permissions, state
  - NodeSet: order-insensitive node name set used for the set algebra
  - Decision: Skip, Execute(Action) or Defer(host), computed once per host

Cluster objects:

  - ResourceSpec: a primitive or stonith resource and its create options
  - OrderConstraint, ColocationConstraint, LocationConstraint: the three
    constraint variants, all implementing Constraint
  - PropertySpec: a crm_config cluster property
  - ReconcileResult: changed flag, action taken, before/after diff

# Identity

Constraints are matched against the live configuration by identity key,
never by id alone:

	order       (first, then)
	colocation  (rsc, with-rsc)
	location    (rsc, id) or (rsc, node)

The keys never collide across kinds since each kind lives under its own
CIB element (rsc_order, rsc_colocation, rsc_location).

# Errors

errors.go holds the error taxonomy shared by the coordinator and the
reconcilers. ValidationError and AmbiguousTargetError are operator
errors and fatal for the run. InternalConsistencyError is a bug.
Failures of the pcs command itself are reported by pkg/pcs.
*/
package types
