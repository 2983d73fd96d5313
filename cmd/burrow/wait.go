package main

import (
	"context"

	"github.com/cuemby/burrow/pkg/reconciler"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait RESOURCE",
	Short: "Start or stop a resource and wait for it",
	Long: `Set the target-role of a resource and wait until pcs resource status
reports it started or stopped. A failed resource is cleaned up first.

Run it for a given resource on one host at a time.

Examples:
  burrow wait nginx --state started
  burrow wait nginx --state stopped --interval 5s --attempts 24`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

func init() {
	waitCmd.Flags().String("state", "started", "Run state to reach (started or stopped)")
	waitCmd.Flags().Duration("interval", reconciler.DefaultPollInterval, "Pause between status checks")
	waitCmd.Flags().Uint("attempts", reconciler.DefaultPollAttempts, "Status checks before giving up")
}

func runWait(cmd *cobra.Command, args []string) error {
	state, _ := cmd.Flags().GetString("state")
	interval, _ := cmd.Flags().GetDuration("interval")
	attempts, _ := cmd.Flags().GetUint("attempts")

	opts := reconcilerOptions()
	opts.PollInterval = interval
	opts.PollAttempts = attempts

	return record(cmd, localHost(), func(ctx context.Context, run *types.Run) error {
		r := reconciler.NewReconciler(newClient(), opts)
		res, err := r.ResourceState(ctx, args[0], types.RunState(state))
		run.Results = append(run.Results, res)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	})
}
