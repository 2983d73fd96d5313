package pcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/shlex"
)

func resourceVerb(class types.ResourceClass) string {
	if class == types.ResourceClassStonith {
		return "stonith"
	}
	return "resource"
}

// resourceCreateArgs builds "resource create NAME TYPE OPTIONS..." or the
// stonith equivalent. Options are split like a shell would split them.
func resourceCreateArgs(spec types.ResourceSpec) ([]string, error) {
	if spec.Name == "" || spec.Type == "" {
		return nil, types.NewValidationError("resource", "name and type are required")
	}

	agent := spec.Type
	switch spec.Class {
	case types.ResourceClassStonith:
		agent = strings.TrimPrefix(agent, "stonith:")
	case types.ResourceClassSystemd:
		if !strings.HasPrefix(agent, "systemd:") {
			agent = "systemd:" + agent
		}
	}

	options, err := shlex.Split(spec.Options)
	if err != nil {
		return nil, types.NewValidationError("options", "cannot split %q: %v", Redact(spec.Options), err)
	}

	args := []string{resourceVerb(spec.Class), "create", spec.Name, agent}
	return append(args, options...), nil
}

func (c *Client) constraintCreateArgs(ctx context.Context, con types.Constraint) ([]string, error) {
	switch con := con.(type) {
	case types.OrderConstraint:
		return orderArgs(con), nil
	case types.ColocationConstraint:
		promoted, err := c.atLeast(ctx, versionPropertyConfig)
		if err != nil {
			return nil, err
		}
		prefixed, err := c.atLeast(ctx, versionScorePrefix)
		if err != nil {
			return nil, err
		}
		return colocationArgs(con, promoted, prefixed), nil
	case types.LocationConstraint:
		prefixed, err := c.atLeast(ctx, versionScorePrefix)
		if err != nil {
			return nil, err
		}
		return locationArgs(con, prefixed)
	default:
		return nil, fmt.Errorf("unsupported constraint type %T", con)
	}
}

func orderArgs(c types.OrderConstraint) []string {
	c = c.WithDefaults()
	return []string{
		"constraint", "order",
		c.FirstAction, c.First,
		"then",
		c.ThenAction, c.Then,
		"kind=" + c.OrderKind,
		"symmetrical=" + c.Symmetrical,
	}
}

// PcsRole translates a role to the spelling the pcs version expects
func PcsRole(role string, promoted bool) string {
	if !promoted {
		return role
	}
	switch role {
	case "Master":
		return "Promoted"
	case "Slave":
		return "Unpromoted"
	}
	return role
}

func colocationArgs(c types.ColocationConstraint, promoted, prefixed bool) []string {
	c = c.WithDefaults()
	args := []string{"constraint", "colocation", "add"}
	if c.ResourceRole != "" {
		args = append(args, PcsRole(c.ResourceRole, promoted))
	}
	args = append(args, c.Resource, "with")
	if c.WithRole != "" {
		args = append(args, PcsRole(c.WithRole, promoted))
	}
	args = append(args, c.With)
	if prefixed {
		return append(args, "score="+c.Score)
	}
	return append(args, c.Score)
}

func locationArgs(c types.LocationConstraint, prefixed bool) ([]string, error) {
	c = c.WithDefaults()
	score := c.Score
	if prefixed {
		score = "score=" + c.Score
	}

	switch {
	case c.Rule != "":
		tokens, err := shlex.Split(c.Rule)
		if err != nil {
			return nil, types.NewValidationError("rule", "cannot split %q: %v", c.Rule, err)
		}
		args := []string{"constraint", "location", c.Resource, "rule"}
		if c.ResourceDiscovery != "" {
			args = append(args, "resource-discovery="+c.ResourceDiscovery)
		}
		args = append(args, "constraint-id="+c.ID, "score="+c.Score)
		return append(args, tokens...), nil

	case c.ResourceDiscovery != "":
		return []string{
			"constraint", "location", "add", c.ID, c.Resource, c.Node, score,
			"resource-discovery=" + c.ResourceDiscovery,
		}, nil

	default:
		return []string{"constraint", "location", c.Resource, "prefers", c.Node + "=" + c.Score}, nil
	}
}

func setupArgs(d types.DesiredMembership, newSyntax bool) []string {
	transport := d.Transport
	if transport == "default" {
		transport = ""
	}

	if newSyntax {
		args := append([]string{"cluster", "setup", d.ClusterName}, d.Nodes...)
		if transport != "" {
			args = append(args, "transport", transport)
		}
		if d.Token > 0 {
			args = append(args, "totem", "token="+strconv.Itoa(d.Token))
		}
		return append(args, "--start", "--enable")
	}

	args := append([]string{"cluster", "setup", "--name", d.ClusterName}, d.Nodes...)
	if d.Token > 0 {
		args = append(args, "--token", strconv.Itoa(d.Token))
	}
	if transport != "" {
		args = append(args, "--transport", transport)
	}
	return append(args, "--start", "--enable")
}
