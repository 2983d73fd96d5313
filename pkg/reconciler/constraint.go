package reconciler

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/cuemby/burrow/pkg/cib"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/rule"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	orderActions  = []string{"start", "promote", "demote", "stop"}
	orderKinds    = []string{"Optional", "Mandatory", "Serialize"}
	booleans      = []string{"true", "false"}
	roles         = []string{"Master", "Slave", "Promoted", "Unpromoted", "Started"}
	discoveryMode = []string{"always", "never", "exclusive"}
)

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return types.NewValidationError(field, "%q is not one of %v", value, allowed)
}

func validateState(s types.State) error {
	if s != types.StatePresent && s != types.StateAbsent {
		return types.NewValidationError("state", "unknown state %q", s)
	}
	return nil
}

// normalizeScore maps the spellings pacemaker treats as equal
func normalizeScore(s string) string {
	switch s {
	case "+INFINITY", "INFINITY", "inf", "+inf":
		return "INFINITY"
	case "-inf":
		return "-INFINITY"
	}
	return s
}

// normalizeRole maps legacy role names to their current spelling; a
// missing role means Started
func normalizeRole(role string) string {
	switch role {
	case "":
		return types.DefaultRole
	case "Master":
		return "Promoted"
	case "Slave":
		return "Unpromoted"
	}
	return role
}

// Constraint dispatches to the reconciler for the constraint's kind
func (r *Reconciler) Constraint(ctx context.Context, c types.Constraint) (types.ReconcileResult, error) {
	switch c := c.(type) {
	case types.OrderConstraint:
		return r.Order(ctx, c)
	case types.ColocationConstraint:
		return r.Colocation(ctx, c)
	case types.LocationConstraint:
		return r.Location(ctx, c)
	default:
		return types.ReconcileResult{}, fmt.Errorf("unsupported constraint type %T", c)
	}
}

// comparison is what a kind-specific compare reports about a live
// constraint: whether it matches, and old/new values worth reporting
type comparison struct {
	match   bool
	details map[string]string
}

// reconcileConstraint implements the lifecycle shared by every kind:
// create when missing, delete then create when different, delete when
// absent
func (r *Reconciler) reconcileConstraint(
	ctx context.Context,
	desired types.Constraint,
	identity cib.Identity,
	compare func(live *etree.Element) comparison,
) (res types.ReconcileResult, err error) {
	kind := desired.Kind()
	res = newResult(string(kind), desired.String())
	timer := metrics.NewTimer()
	defer func() { observe(timer, res, err) }()

	doc, err := r.tool.GetConfiguration(ctx)
	if err != nil {
		return res, err
	}
	live := doc.FindConstraint(kind, identity)
	find := func(d *cib.Document) *etree.Element { return d.FindConstraint(kind, identity) }

	if desired.DesiredState() == types.StateAbsent {
		if live == nil {
			return res, nil
		}
		r.changed(&res, types.ReconcileDelete)
		res.Diff = diff(live, nil)
		if r.opts.CheckMode {
			return res, nil
		}
		if err := r.tool.DeleteConstraint(ctx, live.SelectAttrValue("id", "")); err != nil {
			return res, fmt.Errorf("failed to delete %s: %w", desired, err)
		}
		return res, nil
	}

	if live == nil {
		r.changed(&res, types.ReconcileCreate)
		if r.opts.CheckMode {
			return res, nil
		}
		if err := r.tool.CreateConstraint(ctx, desired); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", desired, err)
		}
		res.Diff = diff(nil, r.reload(ctx, find))
		return res, nil
	}

	cmp := compare(live)
	if cmp.match {
		return res, nil
	}

	r.changed(&res, types.ReconcileUpdate)
	res.Details = cmp.details
	if r.opts.CheckMode {
		res.Diff = &types.Diff{Before: render(live)}
		return res, nil
	}

	if err := r.tool.DeleteConstraint(ctx, live.SelectAttrValue("id", "")); err != nil {
		return res, fmt.Errorf("failed to delete %s for replacement: %w", desired, err)
	}
	if err := r.tool.CreateConstraint(ctx, desired); err != nil {
		return res, fmt.Errorf("failed to create replacement for %s: %w", desired, err)
	}
	res.Diff = diff(live, r.reload(ctx, find))
	return res, nil
}

// Order converges an order constraint identified by (first, then)
func (r *Reconciler) Order(ctx context.Context, c types.OrderConstraint) (types.ReconcileResult, error) {
	c = c.WithDefaults()
	if c.First == "" || c.Then == "" {
		return newResult(string(types.ConstraintOrder), c.String()),
			types.NewValidationError("resource", "both resources of an order constraint are required")
	}
	for _, check := range []error{
		validateState(c.State),
		oneOf("resource1_action", c.FirstAction, orderActions),
		oneOf("resource2_action", c.ThenAction, orderActions),
		oneOf("kind", c.OrderKind, orderKinds),
		oneOf("symmetrical", c.Symmetrical, booleans),
	} {
		if check != nil {
			return newResult(string(types.ConstraintOrder), c.String()), check
		}
	}

	identity := cib.Identity{All: []cib.Attr{{Name: "first", Value: c.First}, {Name: "then", Value: c.Then}}}
	return r.reconcileConstraint(ctx, c, identity, func(live *etree.Element) comparison {
		return compareOrder(c, live)
	})
}

func compareOrder(c types.OrderConstraint, live *etree.Element) comparison {
	firstAction := live.SelectAttrValue("first-action", types.DefaultAction)
	thenAction := live.SelectAttrValue("then-action", firstAction)

	details := map[string]string{
		"old_action1": firstAction, "new_action1": c.FirstAction,
		"old_action2": thenAction, "new_action2": c.ThenAction,
	}
	match := firstAction == c.FirstAction && thenAction == c.ThenAction

	if kind := live.SelectAttr("kind"); kind != nil {
		details["old_kind"], details["new_kind"] = kind.Value, c.OrderKind
		match = match && kind.Value == c.OrderKind
	}
	if sym := live.SelectAttr("symmetrical"); sym != nil {
		details["old_symmetrical"], details["new_symmetrical"] = sym.Value, c.Symmetrical
		match = match && sym.Value == c.Symmetrical
	}
	return comparison{match: match, details: details}
}

// Colocation converges a colocation constraint identified by (rsc, with-rsc)
func (r *Reconciler) Colocation(ctx context.Context, c types.ColocationConstraint) (types.ReconcileResult, error) {
	c = c.WithDefaults()
	if c.Resource == "" || c.With == "" {
		return newResult(string(types.ConstraintColocation), c.String()),
			types.NewValidationError("resource", "both resources of a colocation constraint are required")
	}
	checks := []error{validateState(c.State)}
	if c.ResourceRole != "" {
		checks = append(checks, oneOf("resource1_role", c.ResourceRole, roles))
	}
	if c.WithRole != "" {
		checks = append(checks, oneOf("resource2_role", c.WithRole, roles))
	}
	for _, check := range checks {
		if check != nil {
			return newResult(string(types.ConstraintColocation), c.String()), check
		}
	}

	identity := cib.Identity{All: []cib.Attr{{Name: "rsc", Value: c.Resource}, {Name: "with-rsc", Value: c.With}}}
	return r.reconcileConstraint(ctx, c, identity, func(live *etree.Element) comparison {
		return compareColocation(c, live)
	})
}

func compareColocation(c types.ColocationConstraint, live *etree.Element) comparison {
	oldScore := live.SelectAttrValue("score", "")
	oldRole1 := normalizeRole(live.SelectAttrValue("rsc-role", ""))
	oldRole2 := normalizeRole(live.SelectAttrValue("with-rsc-role", ""))
	newRole1 := normalizeRole(c.ResourceRole)
	newRole2 := normalizeRole(c.WithRole)

	match := normalizeScore(oldScore) == normalizeScore(c.Score)
	// live roles are left alone unless a role was requested
	if c.HasRoles() {
		match = match && oldRole1 == newRole1 && oldRole2 == newRole2
	}
	return comparison{
		match: match,
		details: map[string]string{
			"old_score": oldScore, "new_score": c.Score,
			"old_role1": oldRole1, "new_role1": newRole1,
			"old_role2": oldRole2, "new_role2": newRole2,
		},
	}
}

func validateLocation(c types.LocationConstraint) (*rule.Rule, error) {
	if c.Resource == "" {
		return nil, types.NewValidationError("resource", "resource is required")
	}
	if err := validateState(c.State); err != nil {
		return nil, err
	}
	switch {
	case c.Node == "" && c.Rule == "":
		return nil, types.NewValidationError("node_name", "one of node_name or rule is required")
	case c.Node != "" && c.Rule != "":
		return nil, types.NewValidationError("rule", "node_name and rule are mutually exclusive")
	case c.Rule != "" && c.ID == "":
		return nil, types.NewValidationError("constraint_id", "constraint_id is required with rule")
	}
	if c.ResourceDiscovery != "" {
		if c.ID == "" {
			return nil, types.NewValidationError("constraint_id", "constraint_id is required with resource_discovery")
		}
		if err := oneOf("resource_discovery", c.ResourceDiscovery, discoveryMode); err != nil {
			return nil, err
		}
	}
	if c.Rule == "" {
		return nil, nil
	}
	parsed, err := rule.Parse(c.Rule)
	if err != nil {
		return nil, types.NewValidationError("rule", "%v", err)
	}
	return parsed, nil
}

// Location converges a location constraint identified by (rsc, id) or
// (rsc, node)
func (r *Reconciler) Location(ctx context.Context, c types.LocationConstraint) (types.ReconcileResult, error) {
	c = c.WithDefaults()
	parsed, err := validateLocation(c)
	if err != nil {
		return newResult(string(types.ConstraintLocation), c.String()), err
	}

	identity := cib.Identity{
		All: []cib.Attr{{Name: "rsc", Value: c.Resource}},
		Any: []cib.Attr{{Name: "id", Value: c.ID}, {Name: "node", Value: c.Node}},
	}
	return r.reconcileConstraint(ctx, c, identity, func(live *etree.Element) comparison {
		return compareLocation(c, parsed, live)
	})
}

func compareLocation(c types.LocationConstraint, parsed *rule.Rule, live *etree.Element) comparison {
	details := map[string]string{"new_score": c.Score}
	match := true

	if parsed != nil {
		liveRule := live.SelectElement("rule")
		oldScore := ""
		if liveRule != nil {
			oldScore = liveRule.SelectAttrValue("score", "")
		}
		details["old_score"] = oldScore
		details["new_rule"] = parsed.String()
		match = parsed.Matches(liveRule) && normalizeScore(oldScore) == normalizeScore(c.Score)
	} else {
		oldScore := live.SelectAttrValue("score", "")
		details["old_score"] = oldScore
		details["old_node"], details["new_node"] = live.SelectAttrValue("node", ""), c.Node
		match = live.SelectElement("rule") == nil &&
			live.SelectAttrValue("node", "") == c.Node &&
			normalizeScore(oldScore) == normalizeScore(c.Score)
	}

	if c.ResourceDiscovery != "" {
		old := live.SelectAttrValue("resource-discovery", "always")
		details["old_resource_discovery"], details["new_resource_discovery"] = old, c.ResourceDiscovery
		match = match && old == c.ResourceDiscovery
	}
	return comparison{match: match, details: details}
}
