package main

import (
	"context"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var propertyCmd = &cobra.Command{
	Use:   "property NAME [VALUE]",
	Short: "Set or unset a cluster property",
	Long: `Set a cluster property, or unset it with --state absent.

Examples:
  burrow property stonith-enabled false
  burrow property maintenance-mode --state absent`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProperty,
}

func init() {
	propertyCmd.Flags().String("state", "present", "Desired state (present or absent)")
}

func runProperty(cmd *cobra.Command, args []string) error {
	spec := config.PropertySpec{Name: args[0]}
	if len(args) > 1 {
		spec.Value = args[1]
	}
	spec.State, _ = cmd.Flags().GetString("state")

	if err := (&config.Desired{Properties: []config.PropertySpec{spec}}).Validate(); err != nil {
		return err
	}

	return record(cmd, localHost(), func(ctx context.Context, run *types.Run) error {
		res, err := newReconciler(newClient()).Property(ctx, spec.Spec())
		run.Results = append(run.Results, res)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	})
}
