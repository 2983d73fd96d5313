// Package facts gathers per-host cluster facts and keeps the facts
// inventory shared by every host of a run.
//
// A host reports a cluster as present when any of PresencePaths exists,
// and lists the members named in the nodelist of corosync.conf. The
// inventory file carries each host's facts plus the explicit host order
// the membership coordinator evaluates in.
package facts
