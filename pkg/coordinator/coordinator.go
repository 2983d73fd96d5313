package coordinator

import (
	"context"
	"fmt"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MembershipTool performs membership mutations on the local host.
// pcs.Client implements it.
type MembershipTool interface {
	SetupCluster(ctx context.Context, d types.DesiredMembership) error
	DestroyCluster(ctx context.Context) error
	AddNode(ctx context.Context, node string) error
	RemoveNode(ctx context.Context, node string) error
}

// Coordinator decides and applies the local host's part of a membership
// change
type Coordinator struct {
	tool      MembershipTool
	checkMode bool
	logger    zerolog.Logger
}

// NewCoordinator creates a coordinator. In check mode decisions are
// reported as changes but never applied.
func NewCoordinator(tool MembershipTool, checkMode bool) *Coordinator {
	return &Coordinator{
		tool:      tool,
		checkMode: checkMode,
		logger:    log.WithComponent("coordinator"),
	}
}

// Converge decides for in.LocalHost and applies the decision
func (c *Coordinator) Converge(ctx context.Context, in Input) (types.MembershipResult, error) {
	d, err := Decide(in)
	if err != nil {
		metrics.DecisionsTotal.WithLabelValues("error", "").Inc()
		return types.MembershipResult{}, err
	}
	return c.Apply(ctx, d, in.Desired)
}

// Apply carries out an execute decision. Skip and defer decisions are
// returned unchanged with their reason.
func (c *Coordinator) Apply(ctx context.Context, d types.Decision, desired types.DesiredMembership) (types.MembershipResult, error) {
	action := ""
	if d.Action != nil {
		action = string(d.Action.Kind)
	}
	metrics.DecisionsTotal.WithLabelValues(string(d.Kind), action).Inc()

	logger := c.logger.With().
		Str("host", d.Host).
		Str("decision", string(d.Kind)).
		Str("order", d.OrderFingerprint).
		Logger()

	if d.Kind != types.DecisionExecute {
		logger.Info().Str("defer_to", d.DeferTo).Msg(d.Reason)
		return types.MembershipResult{Decision: d, SkippedReason: d.Reason}, nil
	}
	if d.Action == nil {
		return types.MembershipResult{}, &types.InternalConsistencyError{Message: "execute decision without an action"}
	}

	res := types.MembershipResult{Decision: d, Changed: true}
	logger.Info().
		Bool("check_mode", c.checkMode).
		Str("action", action).
		Strs("nodes", d.Action.Nodes).
		Msg("Executing membership change")
	if c.checkMode {
		return res, nil
	}

	if err := c.execute(ctx, *d.Action, desired); err != nil {
		return res, fmt.Errorf("failed to %s: %w", action, err)
	}
	return res, nil
}

func (c *Coordinator) execute(ctx context.Context, a types.Action, desired types.DesiredMembership) error {
	switch a.Kind {
	case types.ActionCreate:
		return c.tool.SetupCluster(ctx, desired)
	case types.ActionDestroy, types.ActionRemoveSelf:
		return c.tool.DestroyCluster(ctx)
	case types.ActionAddNodes:
		for _, n := range a.Nodes {
			if err := c.tool.AddNode(ctx, n); err != nil {
				return err
			}
		}
		return nil
	case types.ActionRemoveNodes:
		for _, n := range a.Nodes {
			if err := c.tool.RemoveNode(ctx, n); err != nil {
				return err
			}
		}
		return nil
	}
	return &types.InternalConsistencyError{Message: fmt.Sprintf("unknown action %q", a.Kind)}
}

// HostPlan is one host's decision within a Plan
type HostPlan struct {
	Host     string
	Decision types.Decision
	Err      error
}

// Plan evaluates Decide for every host of the run in parallel. Per-host
// validation errors are kept in HostPlan.Err. The returned error is set
// when the context ends or when two hosts were told to execute the same
// mutation.
func Plan(ctx context.Context, desired types.DesiredMembership, order []string, facts map[string]types.ClusterFact) ([]HostPlan, error) {
	plans := make([]HostPlan, len(order))

	g, ctx := errgroup.WithContext(ctx)
	for i, host := range order {
		i, host := i, host
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := Decide(Input{
				Desired:   desired,
				LocalHost: host,
				Order:     order,
				Facts:     facts,
			})
			if err != nil {
				logger := log.WithHost(host)
				logger.Debug().Err(err).Msg("Host cannot decide")
			}
			plans[i] = HostPlan{Host: host, Decision: d, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkSingleExecutor(plans); err != nil {
		return plans, err
	}
	return plans, nil
}

// checkSingleExecutor verifies that no mutation is executed by more than
// one host. Destroying the local cluster is a per-host mutation.
func checkSingleExecutor(plans []HostPlan) error {
	owner := map[string]string{}
	for _, p := range plans {
		if p.Err != nil || p.Decision.Kind != types.DecisionExecute || p.Decision.Action == nil {
			continue
		}

		a := p.Decision.Action
		var keys []string
		switch a.Kind {
		case types.ActionCreate:
			keys = []string{string(a.Kind)}
		case types.ActionDestroy:
			keys = []string{string(a.Kind) + ":" + p.Host}
		default:
			for _, n := range a.Nodes {
				keys = append(keys, "membership:"+n)
			}
		}

		for _, k := range keys {
			if other, ok := owner[k]; ok {
				return &types.InternalConsistencyError{
					Message: fmt.Sprintf("hosts %s and %s both execute %s", other, p.Host, k),
				}
			}
			owner[k] = p.Host
		}
	}
	return nil
}
