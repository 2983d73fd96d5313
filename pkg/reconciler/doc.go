/*
Package reconciler converges Pacemaker resources, constraints and cluster
properties to their desired definitions.

Each call is a single load, compare, mutate sequence against a fresh copy
of the CIB obtained through ClusterTool:

	state    live object   action
	absent   missing       none
	absent   found         delete
	present  missing       create
	present  found         compare, then replace (resources) or
	                       delete + create (constraints) when different

# Resources

A resource's create options are never diffed field by field. Instead the
resource is created in a scratch copy of the CIB (pcs -f) and the element
pcs produced there is compared with the live one in canonical form. When
they differ, the sandbox element is spliced over the live element and
the whole document is pushed back. Only primitive resources are
reconciled this way; groups, clones and bundles are left to their owners.

# Constraints

Constraints are found by identity key (see pkg/types), compared field by
field, and replaced by deleting the old id and creating the new
definition. Colocation results carry old/new score and role details;
order results carry actions and, when present on the live element, kind
and symmetrical.

# Run state

ResourceState sets a resource's target-role and polls resource status
until it reports started or stopped, for at most Options.PollAttempts
reads. A FAILED resource is cleaned up first; turning FAILED while
starting ends the wait.

# Check mode

With Options.CheckMode every decision is computed and reported but no
mutating command is issued. Resource comparison still materializes into
a sandbox, which never touches the cluster.
*/
package reconciler
