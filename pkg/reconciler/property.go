package reconciler

import (
	"context"
	"fmt"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
)

const kindProperty = "property"

// Property converges one crm_config cluster property
func (r *Reconciler) Property(ctx context.Context, p types.PropertySpec) (res types.ReconcileResult, err error) {
	if p.State == "" {
		p.State = types.StatePresent
	}
	res = newResult(kindProperty, p.Name)
	timer := metrics.NewTimer()
	defer func() { observe(timer, res, err) }()

	if p.Name == "" {
		return res, types.NewValidationError("name", "property name is required")
	}
	if err := validateState(p.State); err != nil {
		return res, err
	}
	if p.State == types.StatePresent && p.Value == "" {
		return res, types.NewValidationError("value", "value is required when state is present")
	}

	props, err := r.tool.ListProperties(ctx)
	if err != nil {
		return res, err
	}
	current, ok := props[p.Name]

	before := ""
	if ok {
		before = p.Name + "=" + current
	}

	if p.State == types.StateAbsent {
		if !ok {
			return res, nil
		}
		r.changed(&res, types.ReconcileDelete)
		res.Diff = &types.Diff{Before: before}
		res.Details = map[string]string{"old_value": current}
		if r.opts.CheckMode {
			return res, nil
		}
		if err := r.tool.UnsetProperty(ctx, p.Name); err != nil {
			return res, fmt.Errorf("failed to unset property %s: %w", p.Name, err)
		}
		return res, nil
	}

	if ok && current == p.Value {
		return res, nil
	}

	action := types.ReconcileCreate
	if ok {
		action = types.ReconcileUpdate
	}
	r.changed(&res, action)
	res.Diff = &types.Diff{Before: before, After: p.Name + "=" + p.Value}
	res.Details = map[string]string{"old_value": current, "new_value": p.Value}
	if r.opts.CheckMode {
		return res, nil
	}
	if err := r.tool.SetProperty(ctx, p.Name, p.Value); err != nil {
		return res, fmt.Errorf("failed to set property %s: %w", p.Name, err)
	}
	return res, nil
}
