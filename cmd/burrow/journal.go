package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cuemby/burrow/pkg/storage"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded runs",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show RUN-ID",
	Short: "Print a recorded run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	RunE:  runJournalPrune,
}

func init() {
	journalListCmd.Flags().Int("limit", 20, "Show at most this many of the newest runs (0 for all)")
	journalPruneCmd.Flags().Int("keep", 100, "Number of runs to keep")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalPruneCmd)
}

func openJournal() (*storage.BoltStore, error) {
	if settings.Journal == "" {
		return nil, fmt.Errorf("journal is disabled")
	}
	return storage.NewBoltStore(settings.Journal)
}

func runJournalList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	table := newTable(cmd.OutOrStdout(), []string{"ID", "Started", "Host", "Command", "Check", "Changed", "Error"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Host,
			r.Command,
			strconv.FormatBool(r.CheckMode),
			strconv.FormatBool(r.Changed()),
			r.Error,
		})
	}
	table.Render()
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func runJournalPrune(cmd *cobra.Command, args []string) error {
	keep, _ := cmd.Flags().GetInt("keep")

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.PruneRuns(keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d runs\n", deleted)
	return nil
}
