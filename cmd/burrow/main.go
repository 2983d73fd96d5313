package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/pcs"
	"github.com/cuemby/burrow/pkg/reconciler"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// settings is loaded before any subcommand runs
var settings config.Settings

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - declarative Pacemaker cluster configuration",
	Long: `Burrow converges a Pacemaker/Corosync cluster to a declared state.

It forms and resizes the cluster, and reconciles resources, constraints
and cluster properties through pcs. Every command is idempotent and can
be run with --check to report what would change.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(cmd)
		if err != nil {
			return err
		}
		settings = config.LoadSettings(v)

		log.Init(log.Config{
			Level:      log.Level(settings.LogLevel),
			JSONOutput: settings.LogJSON,
			File:       settings.LogFile,
		})
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	config.AddFlags(rootCmd)

	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(resourceCmd)
	rootCmd.AddCommand(constraintCmd)
	rootCmd.AddCommand(propertyCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(doctorCmd)
}

func newClient() *pcs.Client {
	return pcs.NewClient(pcs.NewExecRunner(),
		pcs.WithBinary(settings.PCS),
		pcs.WithCIBFile(settings.CIBFile),
	)
}

func newReconciler(client *pcs.Client) *reconciler.Reconciler {
	return reconciler.NewReconciler(client, reconcilerOptions())
}

func reconcilerOptions() reconciler.Options {
	return reconciler.Options{
		CheckMode:  settings.Check,
		SandboxDir: settings.SandboxDir,
	}
}

// localHost returns the short hostname of this machine
func localHost() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return types.ShortName(h)
}

// record runs fn as one journaled run. The journal and the metrics
// textfile are written even when fn fails.
func record(cmd *cobra.Command, host string, fn func(ctx context.Context, run *types.Run) error) error {
	run := storage.NewRun(cmd.CommandPath(), host, settings.Check)
	logger := log.WithRunID(run.ID)
	logger.Debug().Str("command", run.Command).Bool("check_mode", run.CheckMode).Msg("Run started")

	err := fn(cmd.Context(), run)

	run.EndedAt = time.Now().UTC()
	if err != nil {
		run.Error = pcs.Redact(err.Error())
	}

	if settings.Journal != "" {
		if jerr := saveRun(settings.Journal, run); jerr != nil {
			logger.Warn().Err(jerr).Msg("Failed to record run in journal")
		}
	}
	if settings.MetricsTextfile != "" {
		if merr := metrics.WriteTextfile(settings.MetricsTextfile); merr != nil {
			logger.Warn().Err(merr).Msg("Failed to write metrics")
		}
	}

	logger.Debug().Bool("changed", run.Changed()).Msg("Run finished")
	return err
}

func saveRun(path string, run *types.Run) error {
	store, err := storage.NewBoltStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.CreateRun(run)
}
