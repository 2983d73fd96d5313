package main

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/facts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Probe this host for an existing cluster",
	Long: `Probe this host for an existing Pacemaker/Corosync cluster and print
the result as YAML.

With --inventory the facts are merged into an inventory file, which
collects the facts of every host of a run together with the host order.

Examples:
  # Print this host's facts
  burrow facts

  # Record them in a shared inventory
  burrow facts --inventory inventory.yaml`,
	RunE: runFacts,
}

func init() {
	factsCmd.Flags().String("host", "", "Inventory name of this host (default: short hostname)")
	factsCmd.Flags().String("fqdn", "", "Override the detected hostname")
	factsCmd.Flags().String("root", "", "Probe paths below this directory")
	factsCmd.Flags().String("inventory", "", "Merge the facts into this inventory file")
}

func runFacts(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	fqdn, _ := cmd.Flags().GetString("fqdn")
	root, _ := cmd.Flags().GetString("root")
	inventory, _ := cmd.Flags().GetString("inventory")

	fact, err := facts.Gather(facts.ProbeOptions{Host: host, FQDN: fqdn, Root: root})
	if err != nil {
		return err
	}

	if inventory == "" {
		out, err := yaml.Marshal(fact)
		if err != nil {
			return fmt.Errorf("failed to encode facts: %v", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	inv := &facts.Inventory{}
	if _, err := os.Stat(inventory); err == nil {
		if inv, err = facts.LoadInventory(inventory); err != nil {
			return err
		}
	}
	inv.Upsert(fact)
	if err := inv.Save(inventory); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Facts for %s recorded in %s (cluster present: %t)\n", fact.Host, inventory, fact.Present)
	return nil
}
