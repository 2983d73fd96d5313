package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/coordinator"
	"github.com/cuemby/burrow/pkg/facts"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

// Cluster commands
var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage cluster membership",
}

var clusterConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Create, resize or destroy the cluster from this host",
	Long: `Decide this host's part of a membership change and carry it out.

Run the same command on every host listed in the inventory. Each host
reaches the same plan from the shared facts, and exactly one host
performs any given change.

Examples:
  burrow cluster converge --inventory inventory.yaml --name web --nodes "n1 n2 n3"
  burrow cluster converge --inventory inventory.yaml -f desired.yaml --host n2`,
	RunE: runClusterConverge,
}

var clusterPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what every host of the inventory would do",
	RunE:  runClusterPlan,
}

func init() {
	for _, cmd := range []*cobra.Command{clusterConvergeCmd, clusterPlanCmd} {
		cmd.Flags().String("inventory", "", "Inventory file with the facts of every host (required)")
		cmd.Flags().StringP("file", "f", "", "Read the cluster section of this desired state file")
		cmd.Flags().String("name", "", "Cluster name")
		cmd.Flags().String("nodes", "", "Space separated node list; the first node creates the cluster")
		cmd.Flags().Bool("allow-add", false, "Allow adding nodes to an existing cluster")
		cmd.Flags().Bool("allow-remove", false, "Allow removing nodes from an existing cluster")
		cmd.Flags().String("state", "present", "Desired cluster state (present or absent)")
		cmd.Flags().Int("token", 0, "Totem token timeout in milliseconds")
		cmd.Flags().String("transport", "default", "Cluster transport (default, udp, udpu or knet)")
		_ = cmd.MarkFlagRequired("inventory")
	}
	clusterConvergeCmd.Flags().String("host", "", "This host's inventory name (default: short hostname)")

	clusterCmd.AddCommand(clusterConvergeCmd)
	clusterCmd.AddCommand(clusterPlanCmd)
}

// desiredMembership reads the membership from -f or from flags
func desiredMembership(cmd *cobra.Command) (types.DesiredMembership, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		d, err := config.LoadDesired(file)
		if err != nil {
			return types.DesiredMembership{}, err
		}
		if d.Cluster == nil {
			return types.DesiredMembership{}, fmt.Errorf("%s has no cluster section", file)
		}
		return d.Cluster.Membership(), nil
	}

	spec := config.ClusterSpec{}
	spec.Name, _ = cmd.Flags().GetString("name")
	spec.NodeList, _ = cmd.Flags().GetString("nodes")
	spec.AllowNodeAdd, _ = cmd.Flags().GetBool("allow-add")
	spec.AllowNodeRemove, _ = cmd.Flags().GetBool("allow-remove")
	spec.State, _ = cmd.Flags().GetString("state")
	spec.Token, _ = cmd.Flags().GetInt("token")
	spec.Transport, _ = cmd.Flags().GetString("transport")

	if err := (&config.Desired{Cluster: &spec}).Validate(); err != nil {
		return types.DesiredMembership{}, err
	}
	return spec.Membership(), nil
}

func loadInventory(cmd *cobra.Command) (*facts.Inventory, error) {
	path, _ := cmd.Flags().GetString("inventory")
	return facts.LoadInventory(path)
}

func runClusterConverge(cmd *cobra.Command, args []string) error {
	desired, err := desiredMembership(cmd)
	if err != nil {
		return err
	}
	inv, err := loadInventory(cmd)
	if err != nil {
		return err
	}
	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = localHost()
	}

	return record(cmd, host, func(ctx context.Context, run *types.Run) error {
		res, err := converge(ctx, desired, inv, host)
		if err != nil {
			return err
		}
		run.Membership = &res
		printMembership(cmd.OutOrStdout(), res)
		return nil
	})
}

func converge(ctx context.Context, desired types.DesiredMembership, inv *facts.Inventory, host string) (types.MembershipResult, error) {
	c := coordinator.NewCoordinator(newClient(), settings.Check)
	return c.Converge(ctx, coordinator.Input{
		Desired:   desired,
		LocalHost: host,
		Order:     inv.Order,
		Facts:     inv.Facts(),
	})
}

func runClusterPlan(cmd *cobra.Command, args []string) error {
	desired, err := desiredMembership(cmd)
	if err != nil {
		return err
	}
	inv, err := loadInventory(cmd)
	if err != nil {
		return err
	}

	plans, planErr := coordinator.Plan(cmd.Context(), desired, inv.Order, inv.Facts())
	if plans == nil {
		return planErr
	}

	failed := 0
	table := newTable(cmd.OutOrStdout(), []string{"Host", "Decision", "Action", "Nodes", "Defer to", "Reason"})
	for _, p := range plans {
		if p.Err != nil {
			failed++
			table.Append([]string{p.Host, "error", "", "", "", p.Err.Error()})
			continue
		}
		d := p.Decision
		action, nodes := "", ""
		if d.Action != nil {
			action = string(d.Action.Kind)
			nodes = strings.Join(d.Action.Nodes, " ")
		}
		table.Append([]string{p.Host, string(d.Kind), action, nodes, d.DeferTo, d.Reason})
	}
	table.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "Host order fingerprint: %s\n", facts.OrderFingerprint(inv.Order))
	if planErr == nil && failed > 0 {
		return fmt.Errorf("%d of %d hosts cannot decide", failed, len(plans))
	}
	return planErr
}
