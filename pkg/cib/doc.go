/*
Package cib reads, searches and edits Pacemaker CIB documents.

Only configuration/resources, configuration/constraints and
configuration/crm_config are ever looked at. Objects are located by
identity: resources by id in a depth-first walk of nested groups, clones,
masters and bundles; constraints by the attribute pairs that make up
their identity key, first match in document order.

Comparison works on a canonical form (sorted attributes, trimmed text,
no comments) so two documents that differ only in formatting are equal.
Diff renders both sides canonically and returns a unified diff.
*/
package cib
