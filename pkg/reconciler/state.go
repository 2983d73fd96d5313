package reconciler

import (
	"context"
	"fmt"

	"github.com/avast/retry-go"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
)

const kindResourceState = "resource-state"

// ResourceState drives a resource to the started or stopped run state by
// its target-role and waits until resource status reports that state. A
// failed resource is cleaned up before its role is set.
func (r *Reconciler) ResourceState(ctx context.Context, name string, state types.RunState) (res types.ReconcileResult, err error) {
	res = newResult(kindResourceState, name)
	timer := metrics.NewTimer()
	defer func() { observe(timer, res, err) }()

	if name == "" {
		return res, types.NewValidationError("name", "resource name is required")
	}
	if state != types.RunStateStarted && state != types.RunStateStopped {
		return res, types.NewValidationError("state", "unknown run state %q", state)
	}

	st, err := r.tool.ResourceStatus(ctx, name)
	if err != nil {
		return res, err
	}
	res.Details = map[string]string{"role": st.Role}
	if st.Reached(state) {
		return res, nil
	}

	role := state.TargetRole()
	r.changed(&res, types.ReconcileUpdate)
	res.Diff = &types.Diff{Before: "role=" + st.Role, After: "role=" + role}
	res.Details["target_role"] = role
	if r.opts.CheckMode {
		return res, nil
	}

	if st.Failed() {
		if err := r.tool.CleanupResource(ctx, name); err != nil {
			return res, fmt.Errorf("failed to clean up resource %s: %w", name, err)
		}
	}
	if err := r.tool.SetTargetRole(ctx, name, role); err != nil {
		return res, fmt.Errorf("failed to set target-role of %s: %w", name, err)
	}

	logger := log.WithObject(kindResourceState, name)
	err = retry.Do(
		func() error {
			st, err = r.tool.ResourceStatus(ctx, name)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if st.Reached(state) {
				return nil
			}
			if st.Failed() && state == types.RunStateStarted {
				return retry.Unrecoverable(fmt.Errorf("resource %s failed on %s", name, st.Node))
			}
			return fmt.Errorf("resource %s is %s, waiting for %s", name, st.Role, state)
		},
		retry.Context(ctx),
		retry.Attempts(r.opts.PollAttempts),
		retry.Delay(r.opts.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug().Uint("attempt", n+1).Str("role", st.Role).Msg("Waiting for resource")
		}),
	)
	res.Details["role"] = st.Role
	if err != nil {
		return res, err
	}
	return res, nil
}
