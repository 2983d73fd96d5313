/*
Package pcs drives the pcs command line tool.

Client builds every command as an argv slice (never a shell string),
runs it through a Runner and turns a non-zero exit into an
ExternalToolError carrying the redacted command line, exit code, stdout
and stderr. Commands are logged at debug level with passwords redacted.

The installed pcs version is detected once per Client and selects:

  - "score=" prefixed scores (0.12 and later)
  - "property config" over "property show", Promoted/Unpromoted roles
    (0.11 and later)
  - "cluster setup NAME NODES" over "cluster setup --name" (0.10 and later)

When a CIB file is configured, configuration commands run with -f and
GetConfiguration/ApplyConfiguration read and write the file. Membership
commands (setup, destroy, node add/remove), resource status and resource
cleanup always act on the live host.

Creating a resource is retried exactly once when pcs reports that the CIB
replace call timed out. Nothing else is retried.
*/
package pcs
