package pcs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
)

var (
	statusPrimitive = regexp.MustCompile(
		`^\s*(?:\*\s+)?(\S+)\s+\(([^()]+)\):\s+(\S+)(?:\s+([^\s()]+))?((?:\s+\([^()]*\))*)\s*$`)
	statusFlag    = regexp.MustCompile(`\(([^()]*)\)`)
	statusSkipped = regexp.MustCompile(
		`^\s*(?:\*\s+)?(?:` +
			`(?:Resource Group|Clone Set|Master/Slave Set|Promotable Clone Set|Resource Bundle|Container bundle(?: set)?|Replica\[\d+\]):.*` +
			`|(?:Started|Stopped|Stopped \(disabled\)|Masters|Slaves|Promoted|Unpromoted):\s*\[.*\]` +
			`|NO resources configured|No resources` +
			`)\s*$`)
)

// ParseResourceStatus parses "pcs resource status" output such as
//
//	vip	(ocf::heartbeat:IPaddr2):	Started n1
//	Resource Group: web
//	    apache	(systemd:httpd):	Stopped (disabled)
//	Clone Set: ping-clone [ping]
//	    Started: [ n1 n2 ]
//
// Pacemaker 2.1 prints the same lines behind a "* " bullet. Group, clone
// and bundle headers and clone summaries are skipped. Any other line
// that is not a primitive is an error.
func ParseResourceStatus(out string) ([]types.ResourceStatus, error) {
	var statuses []types.ResourceStatus
	for i, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" || statusSkipped.MatchString(line) {
			continue
		}

		m := statusPrimitive.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("unexpected resource status line %d: %q", i+1, line)
		}
		st := types.ResourceStatus{Name: m[1], Agent: m[2], Role: m[3], Node: m[4]}
		for _, f := range statusFlag.FindAllStringSubmatch(m[5], -1) {
			st.Flags = append(st.Flags, f[1])
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// FindResourceStatus returns the status line of the named primitive
func FindResourceStatus(statuses []types.ResourceStatus, name string) (types.ResourceStatus, bool) {
	for _, st := range statuses {
		if st.Name == name {
			return st, true
		}
	}
	return types.ResourceStatus{}, false
}
