package main

import (
	"context"
	"fmt"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/facts"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a desired state file",
	Long: `Converge the cluster to a desired state YAML file.

The cluster section is converged first when an inventory is given, then
resources, constraints (order, colocation, location) and properties, in
file order. The run stops at the first error.

Examples:
  # Reconcile cluster objects
  burrow apply -f desired.yaml

  # Also converge membership, from host n2
  burrow apply -f desired.yaml --inventory inventory.yaml --host n2

  # Show what would change
  burrow apply -f desired.yaml --check`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "Desired state YAML file (required)")
	applyCmd.Flags().String("inventory", "", "Inventory file; enables the cluster section")
	applyCmd.Flags().String("host", "", "This host's inventory name (default: short hostname)")
	_ = applyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	inventory, _ := cmd.Flags().GetString("inventory")
	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = localHost()
	}

	desired, err := config.LoadDesired(filename)
	if err != nil {
		return err
	}

	var inv *facts.Inventory
	if desired.Cluster != nil {
		if inventory == "" {
			logger := log.WithComponent("apply")
			logger.Warn().Msg("Ignoring cluster section, no inventory given")
		} else if inv, err = facts.LoadInventory(inventory); err != nil {
			return err
		}
	}

	return record(cmd, host, func(ctx context.Context, run *types.Run) error {
		return apply(ctx, cmd, desired, inv, host, run)
	})
}

func apply(ctx context.Context, cmd *cobra.Command, desired *config.Desired, inv *facts.Inventory, host string, run *types.Run) error {
	out := cmd.OutOrStdout()

	if inv != nil {
		res, err := converge(ctx, desired.Cluster.Membership(), inv, host)
		if err != nil {
			return fmt.Errorf("cluster: %w", err)
		}
		run.Membership = &res
		printMembership(out, res)
	}

	client := newClient()
	r := newReconciler(client)

	step := func(res types.ReconcileResult, err error) error {
		run.Results = append(run.Results, res)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Object, err)
		}
		printResult(out, res)
		return nil
	}

	for _, spec := range desired.Resources {
		if err := step(r.Resource(ctx, spec.Spec())); err != nil {
			return err
		}
	}
	for _, c := range desired.Constraints.AllConstraints() {
		if err := step(r.Constraint(ctx, c)); err != nil {
			return err
		}
	}
	for _, p := range desired.Properties {
		if err := step(r.Property(ctx, p.Spec())); err != nil {
			return err
		}
	}

	changed := 0
	for _, res := range run.Results {
		if res.Changed {
			changed++
		}
	}
	fmt.Fprintf(out, "✓ %s%d of %d objects changed\n", checkPrefix(), changed, len(run.Results))
	return nil
}
