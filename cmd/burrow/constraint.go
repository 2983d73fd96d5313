package main

import (
	"context"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var constraintCmd = &cobra.Command{
	Use:   "constraint",
	Short: "Ensure order, colocation and location constraints",
}

var constraintOrderCmd = &cobra.Command{
	Use:   "order FIRST THEN",
	Short: "Start THEN after FIRST",
	Args:  cobra.ExactArgs(2),
	RunE:  runConstraintOrder,
}

var constraintColocationCmd = &cobra.Command{
	Use:   "colocation RESOURCE WITH",
	Short: "Keep RESOURCE together with (or away from) WITH",
	Long: `Keep RESOURCE together with WITH, or away from it with a negative score.

Examples:
  burrow constraint colocation apache vip
  burrow constraint colocation db-clone web --role1 Promoted --score -INFINITY`,
	Args: cobra.ExactArgs(2),
	RunE: runConstraintColocation,
}

var constraintLocationCmd = &cobra.Command{
	Use:   "location RESOURCE",
	Short: "Place RESOURCE on a node or where a rule matches",
	Long: `Place RESOURCE on a node, or wherever a rule matches.

Examples:
  burrow constraint location vip --node n1 --score 100
  burrow constraint location vip --id vip_ping_check --score -INFINITY \
    --rule "not_defined pingd or pingd lt 1"`,
	Args: cobra.ExactArgs(1),
	RunE: runConstraintLocation,
}

func init() {
	for _, cmd := range []*cobra.Command{constraintOrderCmd, constraintColocationCmd, constraintLocationCmd} {
		cmd.Flags().String("state", "present", "Desired state (present or absent)")
		constraintCmd.AddCommand(cmd)
	}

	constraintOrderCmd.Flags().String("first-action", "", "Action of FIRST (start, promote, demote or stop)")
	constraintOrderCmd.Flags().String("then-action", "", "Action of THEN (default: the action of FIRST)")
	constraintOrderCmd.Flags().String("kind", "", "Optional, Mandatory or Serialize")
	constraintOrderCmd.Flags().String("symmetrical", "", "true or false")

	constraintColocationCmd.Flags().String("role1", "", "Role of RESOURCE")
	constraintColocationCmd.Flags().String("role2", "", "Role of WITH")
	constraintColocationCmd.Flags().String("score", "", "Score (default INFINITY)")

	constraintLocationCmd.Flags().String("node", "", "Preferred node")
	constraintLocationCmd.Flags().String("rule", "", "Rule expression")
	constraintLocationCmd.Flags().String("id", "", "Constraint id, required with --rule or --resource-discovery")
	constraintLocationCmd.Flags().String("score", "", "Score (default INFINITY)")
	constraintLocationCmd.Flags().String("resource-discovery", "", "always, never or exclusive")
}

func reconcileConstraint(cmd *cobra.Command, c types.Constraint) error {
	return record(cmd, localHost(), func(ctx context.Context, run *types.Run) error {
		res, err := newReconciler(newClient()).Constraint(ctx, c)
		run.Results = append(run.Results, res)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	})
}

func runConstraintOrder(cmd *cobra.Command, args []string) error {
	spec := config.OrderSpec{Resource1: args[0], Resource2: args[1]}
	spec.Resource1Action, _ = cmd.Flags().GetString("first-action")
	spec.Resource2Action, _ = cmd.Flags().GetString("then-action")
	spec.Kind, _ = cmd.Flags().GetString("kind")
	spec.Symmetrical, _ = cmd.Flags().GetString("symmetrical")
	spec.State, _ = cmd.Flags().GetString("state")

	desired := &config.Desired{Constraints: config.ConstraintSpecs{Order: []config.OrderSpec{spec}}}
	if err := desired.Validate(); err != nil {
		return err
	}
	return reconcileConstraint(cmd, spec.Constraint())
}

func runConstraintColocation(cmd *cobra.Command, args []string) error {
	spec := config.ColocationSpec{Resource1: args[0], Resource2: args[1]}
	spec.Resource1Role, _ = cmd.Flags().GetString("role1")
	spec.Resource2Role, _ = cmd.Flags().GetString("role2")
	spec.Score, _ = cmd.Flags().GetString("score")
	spec.State, _ = cmd.Flags().GetString("state")

	desired := &config.Desired{Constraints: config.ConstraintSpecs{Colocation: []config.ColocationSpec{spec}}}
	if err := desired.Validate(); err != nil {
		return err
	}
	return reconcileConstraint(cmd, spec.Constraint())
}

func runConstraintLocation(cmd *cobra.Command, args []string) error {
	spec := config.LocationSpec{Resource: args[0]}
	spec.Node, _ = cmd.Flags().GetString("node")
	spec.Rule, _ = cmd.Flags().GetString("rule")
	spec.ConstraintID, _ = cmd.Flags().GetString("id")
	spec.Score, _ = cmd.Flags().GetString("score")
	spec.ResourceDiscovery, _ = cmd.Flags().GetString("resource-discovery")
	spec.State, _ = cmd.Flags().GetString("state")

	desired := &config.Desired{Constraints: config.ConstraintSpecs{Location: []config.LocationSpec{spec}}}
	if err := desired.Validate(); err != nil {
		return err
	}
	return reconcileConstraint(cmd, spec.Constraint())
}
