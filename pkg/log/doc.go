/*
Package log provides structured logging for Burrow using zerolog.

A single package-level zerolog.Logger is initialised once by the CLI via
log.Init and shared by every package. Child loggers add the context a
reconcile or coordination step needs so a line can be traced back to the
host and the cluster object it concerns.

# Configuration

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,           // console writer, RFC3339 timestamps
		Output:     os.Stderr,
		File:       "/var/log/burrow/burrow.log", // optional, rotated
	})

When File is set, logs are additionally written to a lumberjack rotated
file (10 MB, 3 backups, compressed unless configured otherwise). The file
always receives JSON, whatever the console encoding.

# Context Loggers

  - WithComponent("reconciler")
  - WithHost("node1")
  - WithObject("colocation", "vip with web")
  - WithRunID(runID)

stdout is left to command output (YAML, tables); logs go to stderr by
default.
*/
package log
