package coordinator

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/facts"
	"github.com/cuemby/burrow/pkg/types"
)

// Input is everything a host knows when it decides. Facts were gathered
// before the run and are not refreshed.
type Input struct {
	Desired   types.DesiredMembership
	LocalHost string
	// Order is the canonical host order, identical on every host
	Order []string
	Facts map[string]types.ClusterFact
}

// view is the per-host evaluation state derived from Input
type view struct {
	in        Input
	local     types.ClusterFact
	localName string
	nodes     types.NodeSet
}

func validate(in Input) error {
	d := in.Desired
	if d.AllowAdd && d.AllowRemove {
		return types.NewValidationError("allowNodeAdd", "only one of allowNodeAdd or allowNodeRemove can be enabled")
	}
	switch d.State {
	case types.StatePresent:
		if len(d.Nodes) == 0 {
			return types.NewValidationError("nodeList", "node list is required when state is present")
		}
	case types.StateAbsent:
	default:
		return types.NewValidationError("state", "unknown state %q", d.State)
	}
	if len(in.Order) == 0 {
		return types.NewValidationError("order", "host order is required")
	}

	found := false
	names := make(map[string]string, len(in.Order))
	for _, h := range in.Order {
		f, ok := in.Facts[h]
		if !ok {
			return types.NewValidationError("order", "no facts for host %s", h)
		}
		// node names are short names, so they must pick out one host
		name := f.ShortName()
		if other, dup := names[name]; dup {
			return types.NewValidationError("order", "hosts %s and %s share the node name %s", other, h, name)
		}
		names[name] = h
		found = found || h == in.LocalHost
	}
	if !found {
		return types.NewValidationError("host", "host %s is not part of the host order", in.LocalHost)
	}
	return nil
}

// Decide computes the local host's decision. Every host of a run calls
// Decide with the same desired state, order and facts; at most one of
// them is told to execute any given mutation.
func Decide(in Input) (types.Decision, error) {
	if in.Desired.State == "" {
		in.Desired.State = types.StatePresent
	}
	if err := validate(in); err != nil {
		return types.Decision{}, err
	}

	v := &view{
		in:    in,
		local: in.Facts[in.LocalHost],
		nodes: types.NewNodeSet(in.Desired.Nodes...),
	}
	v.localName = v.local.ShortName()

	d, err := v.decide()
	if err != nil {
		return types.Decision{}, err
	}
	d.Host = in.LocalHost
	d.OrderFingerprint = facts.OrderFingerprint(in.Order)
	return d, nil
}

func (v *view) presentHosts() []string {
	var out []string
	for _, h := range v.in.Order {
		if v.in.Facts[h].Present {
			out = append(out, h)
		}
	}
	return out
}

// hostNamed returns the host of the run whose short name is name
func (v *view) hostNamed(name string) (string, bool) {
	for _, h := range v.in.Order {
		if v.in.Facts[h].ShortName() == name {
			return h, true
		}
	}
	return "", false
}

// detected is the local host's view of the membership, or the union of
// every present host's view when the local host has no cluster
func (v *view) detected() types.NodeSet {
	if v.local.Present {
		return types.NewNodeSet(v.local.DetectedNodes...)
	}
	out := types.NodeSet{}
	for _, h := range v.presentHosts() {
		for _, n := range v.in.Facts[h].DetectedNodes {
			out[n] = struct{}{}
		}
	}
	return out
}

// executor is the first host in canonical order that has a cluster and
// whose own short name is in the desired node list
func (v *view) executor() (string, bool) {
	for _, h := range v.in.Order {
		f := v.in.Facts[h]
		if f.Present && v.nodes.Has(f.ShortName()) {
			return h, true
		}
	}
	return "", false
}

// inNodeOrder returns the members of set in desired node list order,
// followed by any others in lexical order
func (v *view) inNodeOrder(set types.NodeSet) []string {
	out := make([]string, 0, len(set))
	seen := types.NodeSet{}
	for _, n := range v.in.Desired.Nodes {
		if set.Has(n) && !seen.Has(n) {
			out = append(out, n)
			seen[n] = struct{}{}
		}
	}
	for _, n := range set.Sorted() {
		if !seen.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (v *view) ambiguous(detected types.NodeSet, format string, args ...interface{}) error {
	return &types.AmbiguousTargetError{
		Requested: v.nodes.Sorted(),
		Detected:  detected.Sorted(),
		Message:   fmt.Sprintf(format, args...),
	}
}

func (v *view) decide() (types.Decision, error) {
	desired := v.in.Desired
	present := v.presentHosts()

	switch {
	case len(present) == 0 && desired.State == types.StateAbsent:
		return types.Skip(v.in.LocalHost, "no cluster detected on any host"), nil

	case len(present) == 0:
		return v.decideCreate(), nil

	case desired.State == types.StateAbsent:
		if v.local.Present {
			return types.Execute(v.in.LocalHost, types.Action{Kind: types.ActionDestroy}), nil
		}
		return types.Skip(v.in.LocalHost, "no cluster on this host"), nil
	}

	return v.decideMembership()
}

func (v *view) decideCreate() types.Decision {
	creator := v.in.Desired.Nodes[0]
	if v.localName == creator {
		return types.Execute(v.in.LocalHost, types.Action{
			Kind:  types.ActionCreate,
			Nodes: append([]string(nil), v.in.Desired.Nodes...),
		})
	}
	if host, ok := v.hostNamed(creator); ok {
		return types.Defer(v.in.LocalHost, host, fmt.Sprintf("cluster will be created by %s", host))
	}
	return types.Defer(v.in.LocalHost, creator, fmt.Sprintf("cluster will be created by %s, which is not part of this run", creator))
}

func (v *view) decideMembership() (types.Decision, error) {
	desired := v.in.Desired
	host := v.in.LocalHost
	detected := v.detected()
	toAdd := v.nodes.Minus(detected)
	toRemove := detected.Minus(v.nodes)

	if v.nodes.Equal(detected) {
		return types.Skip(host, "cluster present, no membership change needed"), nil
	}

	if len(detected) > 0 && v.nodes.Disjoint(detected) && (desired.AllowAdd || desired.AllowRemove) {
		if !v.local.Present && !v.nodes.Has(v.localName) && !detected.Has(v.localName) {
			return types.Skip(host, "this host is not involved"), nil
		}
		return types.Decision{}, v.ambiguous(detected,
			"requested node list and detected cluster nodes have no node in common")
	}

	if !v.local.Present && !v.nodes.Has(v.localName) {
		return types.Skip(host, "this host is not part of the cluster and was not requested"), nil
	}

	switch {
	case len(toAdd) > 0 && desired.AllowAdd:
		return v.decideAdd(detected, toAdd)
	case len(toRemove) > 0 && desired.AllowRemove:
		return v.decideRemove(detected, toRemove)
	}
	return types.Skip(host, fmt.Sprintf("membership differs but the change is not allowed (allowNodeAdd=%t, allowNodeRemove=%t)",
		desired.AllowAdd, desired.AllowRemove)), nil
}

func (v *view) decideAdd(detected, toAdd types.NodeSet) (types.Decision, error) {
	for _, n := range toAdd.Sorted() {
		if h, ok := v.hostNamed(n); ok && v.in.Facts[h].Present {
			return types.Decision{}, v.ambiguous(detected,
				"node %s already belongs to another cluster", n)
		}
	}

	executor, ok := v.executor()
	if !ok {
		return types.Decision{}, v.ambiguous(detected,
			"no host of the requested node list has a cluster to add nodes from")
	}

	host := v.in.LocalHost
	switch {
	case host == executor:
		return types.Execute(host, types.Action{Kind: types.ActionAddNodes, Nodes: v.inNodeOrder(toAdd)}), nil
	case toAdd.Has(v.localName):
		return types.Defer(host, executor, fmt.Sprintf("this host will be added by %s", executor)), nil
	default:
		return types.Defer(host, executor, fmt.Sprintf("nodes will be added by %s", executor)), nil
	}
}

func (v *view) decideRemove(detected, toRemove types.NodeSet) (types.Decision, error) {
	host := v.in.LocalHost
	if toRemove.Has(v.localName) && v.local.Present {
		return types.Execute(host, types.Action{Kind: types.ActionRemoveSelf, Nodes: []string{v.localName}}), nil
	}

	// removed nodes that cannot remove themselves in this run
	remote := types.NodeSet{}
	for n := range toRemove {
		if h, ok := v.hostNamed(n); !ok || !v.in.Facts[h].Present {
			remote[n] = struct{}{}
		}
	}
	if len(remote) == 0 {
		return types.Skip(host, "no change needed on this host"), nil
	}

	executor, ok := v.executor()
	if !ok {
		return types.Decision{}, v.ambiguous(detected,
			"no host of the requested node list has a cluster to remove nodes from")
	}
	if host == executor {
		return types.Execute(host, types.Action{Kind: types.ActionRemoveNodes, Nodes: remote.Sorted()}), nil
	}
	return types.Defer(host, executor, fmt.Sprintf("nodes will be removed by %s", executor)), nil
}
