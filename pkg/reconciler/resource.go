package reconciler

import (
	"context"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/cuemby/burrow/pkg/cib"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
)

const kindResource = "resource"

func validateResource(spec types.ResourceSpec) error {
	if spec.Name == "" {
		return types.NewValidationError("name", "resource name is required")
	}
	switch spec.Class {
	case "", types.ResourceClassOCF, types.ResourceClassSystemd, types.ResourceClassStonith:
	default:
		return types.NewValidationError("class", "unknown resource class %q", spec.Class)
	}
	switch spec.State {
	case types.StatePresent:
		if spec.Type == "" {
			return types.NewValidationError("type", "resource type is required when state is present")
		}
	case types.StateAbsent:
	default:
		return types.NewValidationError("state", "unknown state %q", spec.State)
	}
	return nil
}

// Resource converges one primitive or stonith resource
func (r *Reconciler) Resource(ctx context.Context, spec types.ResourceSpec) (res types.ReconcileResult, err error) {
	if spec.State == "" {
		spec.State = types.StatePresent
	}
	res = newResult(kindResource, spec.Name)
	timer := metrics.NewTimer()
	defer func() { observe(timer, res, err) }()

	if err := validateResource(spec); err != nil {
		return res, err
	}

	doc, err := r.tool.GetConfiguration(ctx)
	if err != nil {
		return res, err
	}
	live := doc.FindResource(spec.Name)

	switch {
	case spec.State == types.StateAbsent && live == nil:
		return res, nil

	case spec.State == types.StateAbsent:
		r.changed(&res, types.ReconcileDelete)
		res.Diff = diff(live, nil)
		if r.opts.CheckMode {
			return res, nil
		}
		if err := r.tool.DeleteResource(ctx, spec); err != nil {
			return res, fmt.Errorf("failed to delete resource %s: %w", spec.Name, err)
		}
		return res, nil

	case live == nil:
		r.changed(&res, types.ReconcileCreate)
		if r.opts.CheckMode {
			return res, nil
		}
		if err := r.tool.CreateResource(ctx, spec); err != nil {
			return res, fmt.Errorf("failed to create resource %s: %w", spec.Name, err)
		}
		res.Diff = diff(nil, r.reload(ctx, func(d *cib.Document) *etree.Element {
			return d.FindResource(spec.Name)
		}))
		return res, nil
	}

	if live.Tag != "primitive" {
		return res, types.NewValidationError("name", "%s is a %s, only primitive resources can be reconciled", spec.Name, live.Tag)
	}

	want, err := r.materialize(ctx, doc, spec)
	if err != nil {
		return res, err
	}
	if cib.Equal(live, want) {
		return res, nil
	}

	r.changed(&res, types.ReconcileReplace)
	res.Diff = diff(live, want)
	r.logger.Debug().Str("resource", spec.Name).Str("diff", cib.StructDiff(live, want)).Msg("Resource differs")
	if r.opts.CheckMode {
		return res, nil
	}

	if err := doc.Replace(live, want); err != nil {
		return res, &types.InternalConsistencyError{Message: err.Error()}
	}
	if err := r.tool.ApplyConfiguration(ctx, doc); err != nil {
		return res, fmt.Errorf("failed to update resource %s: %w", spec.Name, err)
	}
	return res, nil
}

// materialize creates spec in a scratch copy of doc and returns the
// element pcs produced for it. The scratch file only lives for this call.
func (r *Reconciler) materialize(ctx context.Context, doc *cib.Document, spec types.ResourceSpec) (*etree.Element, error) {
	f, err := os.CreateTemp(r.opts.SandboxDir, "burrow-sandbox-*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := doc.SandboxCopy().WriteFile(path); err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	if err := r.tool.MaterializeResource(ctx, spec, path); err != nil {
		return nil, err
	}

	sandbox, err := cib.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sandbox: %w", err)
	}
	want := sandbox.FindResource(spec.Name)
	if want == nil {
		return nil, &types.InternalConsistencyError{
			Message: fmt.Sprintf("resource %s not found in sandbox after creating it", spec.Name),
		}
	}
	return want, nil
}
