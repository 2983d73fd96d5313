package reconciler

import (
	"context"
	"time"

	"github.com/beevik/etree"
	"github.com/cuemby/burrow/pkg/cib"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/pcs"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// ClusterTool is the command surface the reconciler mutates the cluster
// through. pcs.Client implements it.
type ClusterTool interface {
	GetConfiguration(ctx context.Context) (*cib.Document, error)
	ApplyConfiguration(ctx context.Context, doc *cib.Document) error

	CreateResource(ctx context.Context, spec types.ResourceSpec) error
	// MaterializeResource creates the resource in the given CIB file only
	MaterializeResource(ctx context.Context, spec types.ResourceSpec, cibFile string) error
	DeleteResource(ctx context.Context, spec types.ResourceSpec) error

	CreateConstraint(ctx context.Context, c types.Constraint) error
	DeleteConstraint(ctx context.Context, id string) error

	ListProperties(ctx context.Context) (map[string]string, error)
	SetProperty(ctx context.Context, name, value string) error
	UnsetProperty(ctx context.Context, name string) error

	ResourceStatus(ctx context.Context, name string) (types.ResourceStatus, error)
	SetTargetRole(ctx context.Context, name, role string) error
	CleanupResource(ctx context.Context, name string) error
}

// Options configures a Reconciler
type Options struct {
	// CheckMode computes and reports changes without applying them
	CheckMode bool
	// SandboxDir holds scratch CIB files (default: os.TempDir())
	SandboxDir string

	// PollInterval and PollAttempts bound the wait for a resource to
	// reach its run state
	PollInterval time.Duration
	PollAttempts uint
}

const (
	DefaultPollInterval = 15 * time.Second
	DefaultPollAttempts = 8
)

// Reconciler converges resources, constraints and properties to their
// desired definitions. Every call loads the CIB fresh, decides, and
// issues one mutating command sequence or none.
type Reconciler struct {
	tool   ClusterTool
	opts   Options
	logger zerolog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(tool ClusterTool, opts Options) *Reconciler {
	if opts.PollAttempts == 0 {
		opts.PollAttempts = DefaultPollAttempts
	}
	return &Reconciler{
		tool:   tool,
		opts:   opts,
		logger: log.WithComponent("reconciler"),
	}
}

func newResult(kind, object string) types.ReconcileResult {
	return types.ReconcileResult{
		Kind:   kind,
		Object: object,
		Action: types.ReconcileNone,
		At:     time.Now(),
	}
}

// changed marks res as changing with action and logs it
func (r *Reconciler) changed(res *types.ReconcileResult, action types.ReconcileAction) {
	res.Changed = true
	res.Action = action

	r.logger.Info().
		Bool("check_mode", r.opts.CheckMode).
		Str("kind", res.Kind).
		Str("object", res.Object).
		Str("action", string(action)).
		Msg("Cluster object out of date")
}

// observe records metrics for a finished reconcile call
func observe(timer *metrics.Timer, res types.ReconcileResult, err error) {
	timer.ObserveDurationVec(metrics.ReconcileDuration, res.Kind)
	if err != nil {
		metrics.ReconcileErrors.WithLabelValues(res.Kind).Inc()
		return
	}
	metrics.ReconcileTotal.WithLabelValues(res.Kind, string(res.Action)).Inc()
}

// render returns the canonical, redacted XML of el
func render(el *etree.Element) string {
	return pcs.Redact(cib.Render(el))
}

func diff(before, after *etree.Element) *types.Diff {
	return &types.Diff{
		Before:  render(before),
		After:   render(after),
		Unified: pcs.Redact(cib.Diff(before, after)),
	}
}

// reload fetches the configuration again and returns what find locates
// in it, for reporting the state after a mutation
func (r *Reconciler) reload(ctx context.Context, find func(*cib.Document) *etree.Element) *etree.Element {
	doc, err := r.tool.GetConfiguration(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to reload configuration after change")
		return nil
	}
	return find(doc)
}
