package main

import (
	"context"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var resourceCmd = &cobra.Command{
	Use:   "resource NAME",
	Short: "Ensure a cluster resource exists with the given definition",
	Long: `Ensure a primitive resource (or stonith device) matches its definition.

An existing resource is replaced in place when the definition pcs would
create differs from the live one; it keeps its position in groups.

Examples:
  burrow resource vip --type ocf:heartbeat:IPaddr2 --options "ip=192.168.1.10 cidr_netmask=24"
  burrow resource apache --class systemd --type httpd
  burrow resource old-vip --state absent`,
	Args: cobra.ExactArgs(1),
	RunE: runResource,
}

func init() {
	resourceCmd.Flags().String("type", "", "Resource agent, e.g. ocf:heartbeat:IPaddr2")
	resourceCmd.Flags().String("class", "ocf", "Resource class (ocf, systemd or stonith)")
	resourceCmd.Flags().String("options", "", "Options passed to pcs resource create")
	resourceCmd.Flags().String("state", "present", "Desired state (present or absent)")
}

func runResource(cmd *cobra.Command, args []string) error {
	spec := config.ResourceSpec{Name: args[0]}
	spec.Type, _ = cmd.Flags().GetString("type")
	spec.Class, _ = cmd.Flags().GetString("class")
	spec.Options, _ = cmd.Flags().GetString("options")
	spec.State, _ = cmd.Flags().GetString("state")

	if err := (&config.Desired{Resources: []config.ResourceSpec{spec}}).Validate(); err != nil {
		return err
	}

	return record(cmd, localHost(), func(ctx context.Context, run *types.Run) error {
		res, err := newReconciler(newClient()).Resource(ctx, spec.Spec())
		run.Results = append(run.Results, res)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	})
}
