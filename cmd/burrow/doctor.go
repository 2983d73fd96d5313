package main

import (
	"context"
	"fmt"

	"github.com/cuemby/burrow/pkg/facts"
	"github.com/cuemby/burrow/pkg/health"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that pcs and the CIB are usable",
	Long: `Run the preflight checks: detect the pcs version and read the CIB
(the live cluster, or the file given with --cib-file).

With --inventory, also check that pcsd is reachable on every other host.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().String("inventory", "", "Inventory file listing the peer hosts")
	doctorCmd.Flags().String("host", "", "This host's inventory name (default: short hostname)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	client := newClient()

	checkers := []health.Checker{
		&health.FuncChecker{Component: "pcs", Fn: func(ctx context.Context) (string, error) {
			v, err := client.Version(ctx)
			if err != nil {
				return "", err
			}
			metrics.SetVersion(v.String())
			return "pcs " + v.String(), nil
		}},
		&health.FuncChecker{Component: "cib", Fn: func(ctx context.Context) (string, error) {
			doc, err := client.GetConfiguration(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d top-level resources", len(doc.Resources().ChildElements())), nil
		}},
	}

	if path, _ := cmd.Flags().GetString("inventory"); path != "" {
		inv, err := facts.LoadInventory(path)
		if err != nil {
			return err
		}
		self, _ := cmd.Flags().GetString("host")
		if self == "" {
			self = localHost()
		}
		for _, f := range inv.Hosts {
			if f.Host == self || f.ShortName() == self {
				continue
			}
			checkers = append(checkers, health.NewPCSDChecker(peerAddress(f)))
		}
	}

	results := health.Run(cmd.Context(), checkers...)

	out := cmd.OutOrStdout()
	for _, c := range checkers {
		res := results[c.Name()]
		mark := "✓"
		if !res.Healthy {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s %s: %s\n", mark, c.Name(), res.Message)
	}

	if ready := metrics.GetReadiness(); ready.Status != "ready" {
		return fmt.Errorf("preflight failed: %s", ready.Message)
	}
	if metrics.GetHealth().Status != "healthy" {
		return fmt.Errorf("preflight failed: pcsd is unreachable on some hosts")
	}
	fmt.Fprintln(out, "✓ Ready")
	return nil
}

// peerAddress prefers the FQDN a host reported for itself
func peerAddress(f types.ClusterFact) string {
	if f.FQDN != "" {
		return f.FQDN
	}
	return f.Host
}
