package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/olekukonko/tablewriter"
)

func checkPrefix() string {
	if settings.Check {
		return "(check) "
	}
	return ""
}

// printResult prints one reconcile result and its diff
func printResult(w io.Writer, res types.ReconcileResult) {
	if !res.Changed {
		fmt.Fprintf(w, "  %s: up to date\n", res.Object)
		return
	}

	line := fmt.Sprintf("✓ %s%s: %s", checkPrefix(), res.Object, res.Action)
	if len(res.Details) > 0 {
		keys := make([]string, 0, len(res.Details))
		for k := range res.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + res.Details[k]
		}
		line += " (" + strings.Join(pairs, " ") + ")"
	}
	fmt.Fprintln(w, line)

	if res.Diff != nil && res.Diff.Unified != "" {
		for _, l := range strings.Split(strings.TrimRight(res.Diff.Unified, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", l)
		}
	}
}

func printMembership(w io.Writer, res types.MembershipResult) {
	d := res.Decision
	switch d.Kind {
	case types.DecisionExecute:
		fmt.Fprintf(w, "✓ %s%s: %s %s\n", checkPrefix(), d.Host, d.Action.Kind, strings.Join(d.Action.Nodes, " "))
	case types.DecisionDefer:
		fmt.Fprintf(w, "  %s: deferred to %s (%s)\n", d.Host, d.DeferTo, d.Reason)
	default:
		fmt.Fprintf(w, "  %s: %s\n", d.Host, d.Reason)
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}
