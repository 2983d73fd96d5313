package types

import (
	"sort"
	"strings"
	"time"
)

// State is the desired presence of a cluster or cluster object
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// ClusterFact is what the fact probe reported for one host before the run
type ClusterFact struct {
	Host          string   `json:"host" yaml:"host"`
	FQDN          string   `json:"fqdn,omitempty" yaml:"fqdn,omitempty"`
	Present       bool     `json:"clusterPresent" yaml:"clusterPresent"`
	DetectedNodes []string `json:"detectedNodes,omitempty" yaml:"detectedNodes,omitempty"`
}

// ShortName returns the host's short name: the first label of its FQDN,
// or of the host id when no FQDN was reported
func (f ClusterFact) ShortName() string {
	name := f.FQDN
	if name == "" {
		name = f.Host
	}
	return ShortName(name)
}

// ShortName strips everything after the first dot
func ShortName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// DesiredMembership describes which nodes should form the cluster
type DesiredMembership struct {
	ClusterName string
	// Nodes is compared as a set, except that Nodes[0] creates a new cluster
	Nodes       []string
	AllowAdd    bool
	AllowRemove bool
	State       State

	// Cluster creation options
	Token     int    // totem token timeout in milliseconds, 0 = pcs default
	Transport string // "default", "udp", "udpu" or "knet"
}

// ParseNodeList splits a space separated node list
func ParseNodeList(s string) []string {
	return strings.Fields(s)
}

// NodeSet is an order-insensitive set of node names
type NodeSet map[string]struct{}

// NewNodeSet builds a set from names, ignoring empty entries
func NewNodeSet(names ...string) NodeSet {
	s := make(NodeSet, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

func (s NodeSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Minus returns the members of s that are not in other
func (s NodeSet) Minus(other NodeSet) NodeSet {
	out := NodeSet{}
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s NodeSet) Equal(other NodeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Disjoint reports whether s and other share no member
func (s NodeSet) Disjoint(other NodeSet) bool {
	for n := range s {
		if other.Has(n) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order
func (s NodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DecisionKind tags an ExecutionDecision
type DecisionKind string

const (
	DecisionSkip    DecisionKind = "skip"
	DecisionExecute DecisionKind = "execute"
	DecisionDefer   DecisionKind = "defer"
)

// ActionKind is the membership mutation a host executes
type ActionKind string

const (
	ActionCreate      ActionKind = "create"
	ActionDestroy     ActionKind = "destroy"
	ActionAddNodes    ActionKind = "add-nodes"
	ActionRemoveNodes ActionKind = "remove-nodes"
	ActionRemoveSelf  ActionKind = "remove-self"
)

// Action is a concrete membership mutation
type Action struct {
	Kind  ActionKind `json:"kind"`
	Nodes []string   `json:"nodes,omitempty"`
}

// Decision is the per-host, per-run coordination outcome. It is computed
// once and never mutated.
type Decision struct {
	Host    string       `json:"host"`
	Kind    DecisionKind `json:"kind"`
	Action  *Action      `json:"action,omitempty"`
	DeferTo string       `json:"deferTo,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	// OrderFingerprint identifies the canonical host order the decision
	// was computed from
	OrderFingerprint string `json:"orderFingerprint,omitempty"`
}

// Skip builds a skip decision
func Skip(host, reason string) Decision {
	return Decision{Host: host, Kind: DecisionSkip, Reason: reason}
}

// Execute builds a decision that makes host perform action
func Execute(host string, action Action) Decision {
	return Decision{Host: host, Kind: DecisionExecute, Action: &action}
}

// Defer builds a decision naming the host that performs the work instead
func Defer(host, to, reason string) Decision {
	return Decision{Host: host, Kind: DecisionDefer, DeferTo: to, Reason: reason}
}

// MembershipResult is what the coordinator reports back to the caller
type MembershipResult struct {
	Decision      Decision `json:"decision"`
	Changed       bool     `json:"changed"`
	SkippedReason string   `json:"skippedReason,omitempty"`
}

// ResourceClass selects the pcs verb family used for a resource
type ResourceClass string

const (
	ResourceClassOCF     ResourceClass = "ocf"
	ResourceClassSystemd ResourceClass = "systemd"
	ResourceClassStonith ResourceClass = "stonith"
)

// ResourceSpec is a desired cluster resource. Options are passed to the
// create command verbatim and are never diffed field by field.
type ResourceSpec struct {
	Name    string
	Class   ResourceClass
	Type    string
	Options string
	State   State
}

// PropertySpec is a desired cluster property
type PropertySpec struct {
	Name  string
	Value string
	State State
}

// ReconcileAction is what a reconcile call did (or would do in check mode)
type ReconcileAction string

const (
	ReconcileNone    ReconcileAction = "none"
	ReconcileCreate  ReconcileAction = "create"
	ReconcileUpdate  ReconcileAction = "update"
	ReconcileReplace ReconcileAction = "replace"
	ReconcileDelete  ReconcileAction = "delete"
)

// Diff holds the before and after rendering of a changed object
type Diff struct {
	Before string `json:"before"`
	After  string `json:"after"`
	// Unified is a unified diff of Before and After, when available
	Unified string `json:"unified,omitempty"`
}

// ReconcileResult is the unit of observability for one cluster object
type ReconcileResult struct {
	Kind    string            `json:"kind"`
	Object  string            `json:"object"`
	Changed bool              `json:"changed"`
	Action  ReconcileAction   `json:"action"`
	Diff    *Diff             `json:"diff,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	At      time.Time         `json:"at"`
}

// Run is one invocation of burrow as recorded in the run journal
type Run struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Host      string    `json:"host,omitempty"`
	CheckMode bool      `json:"checkMode"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitempty"`
	Error     string    `json:"error,omitempty"`

	Membership *MembershipResult `json:"membership,omitempty"`
	Results    []ReconcileResult `json:"results,omitempty"`
}

// Changed reports whether anything changed, or would have in check mode
func (r *Run) Changed() bool {
	if r.Membership != nil && r.Membership.Changed {
		return true
	}
	for _, res := range r.Results {
		if res.Changed {
			return true
		}
	}
	return false
}

// RunState is the runtime state a resource is driven to and waited for
type RunState string

const (
	RunStateStarted RunState = "started"
	RunStateStopped RunState = "stopped"
)

// TargetRole is the target-role meta attribute that requests state
func (s RunState) TargetRole() string {
	if s == RunStateStopped {
		return "Stopped"
	}
	return "Started"
}

// ResourceStatus is one primitive line of "pcs resource status"
type ResourceStatus struct {
	Name  string   `json:"name"`
	Agent string   `json:"agent"`
	Role  string   `json:"role"`
	Node  string   `json:"node,omitempty"`
	Flags []string `json:"flags,omitempty"`
}

// Failed reports whether pacemaker gave up on the resource
func (s ResourceStatus) Failed() bool {
	return s.Role == "FAILED"
}

// Reached reports whether the resource is settled in state
func (s ResourceStatus) Reached(state RunState) bool {
	switch state {
	case RunStateStarted:
		switch s.Role {
		case "Started", "Promoted", "Unpromoted", "Master", "Slave":
			return true
		}
	case RunStateStopped:
		return s.Role == "Stopped"
	}
	return false
}
