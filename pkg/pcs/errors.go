package pcs

import (
	"errors"
	"fmt"
	"strings"
)

// ExternalToolError reports a pcs command that exited non-zero
type ExternalToolError struct {
	Command  string // redacted command line
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExternalToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.ExitCode, Redact(msg))
}

const cibReplaceTimeout = "Call cib_replace failed (-62): Timer expired"

// isCIBReplaceTimeout matches the one transient failure that is retried
func isCIBReplaceTimeout(err error) bool {
	var tErr *ExternalToolError
	return errors.As(err, &tErr) && strings.Contains(tErr.Stderr, cibReplaceTimeout)
}
