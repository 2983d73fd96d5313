/*
Package coordinator decides which host performs a cluster membership
change.

The same configuration is evaluated independently on every host of a
run. Each host sees the facts gathered for all hosts before the run and
the canonical host order, so every host reaches a consistent decision
without talking to the others:

  - no cluster anywhere: the host whose short name is the first entry of
    the node list creates it, the others defer to it
  - state absent: every host that has a cluster destroys it locally
  - nodes to add: the first host in order that has a cluster and is in
    the node list adds them, the others defer to it
  - nodes to remove: removed hosts that are part of the run destroy their
    local cluster, other removed nodes are removed by the first host in
    order that has a cluster and stays in the node list

Plan evaluates every host at once and refuses a plan in which two hosts
execute the same mutation.
*/
package coordinator
