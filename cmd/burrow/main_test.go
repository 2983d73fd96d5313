package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/burrow/pkg/facts"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default between executions of
// the shared command tree
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--journal", ""))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeInventory(t *testing.T, hosts ...types.ClusterFact) string {
	t.Helper()
	inv := &facts.Inventory{}
	for _, h := range hosts {
		inv.Upsert(h)
	}
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, inv.Save(path))
	return path
}

func TestClusterPlanCreate(t *testing.T) {
	path := writeInventory(t,
		types.ClusterFact{Host: "n1", FQDN: "n1.example.com"},
		types.ClusterFact{Host: "n2", FQDN: "n2.example.com"})

	out, err := execute(t, "cluster", "plan", "--inventory", path, "--name", "web", "--nodes", "n1 n2")
	require.NoError(t, err)

	assert.Contains(t, out, "execute")
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "defer")
	assert.Contains(t, out, "Host order fingerprint: "+facts.OrderFingerprint([]string{"n1", "n2"}))
}

func TestClusterPlanRejectsAddAndRemove(t *testing.T) {
	path := writeInventory(t,
		types.ClusterFact{Host: "n1", Present: true, DetectedNodes: []string{"n1", "n2"}},
		types.ClusterFact{Host: "n2", Present: true, DetectedNodes: []string{"n1", "n2"}})

	out, err := execute(t, "cluster", "plan", "--inventory", path, "--name", "web", "--nodes", "n1",
		"--allow-add", "--allow-remove")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 hosts cannot decide")
	assert.Contains(t, out, "only one of allowNodeAdd or allowNodeRemove")
}

func TestClusterPlanValidatesFlags(t *testing.T) {
	path := writeInventory(t, types.ClusterFact{Host: "n1"})

	_, err := execute(t, "cluster", "plan", "--inventory", path, "--name", "web", "--nodes", "n1", "--transport", "tcp")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cluster.transport", verr.Field)
}

func TestFactsInventory(t *testing.T) {
	root := t.TempDir()
	conf := filepath.Join(root, "etc", "corosync", "corosync.conf")
	require.NoError(t, os.MkdirAll(filepath.Dir(conf), 0o755))
	require.NoError(t, os.WriteFile(conf, []byte(`nodelist {
    node {
        ring0_addr: 10.0.0.1
        name: n1
        nodeid: 1
    }
    node {
        ring0_addr: n2
        nodeid: 2
    }
}
`), 0o644))

	path := filepath.Join(t.TempDir(), "inventory.yaml")
	out, err := execute(t, "facts", "--root", root, "--fqdn", "n1.example.com", "--inventory", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Facts for n1 recorded")

	inv, err := facts.LoadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, inv.Order)
	assert.Equal(t, types.ClusterFact{
		Host:          "n1",
		FQDN:          "n1.example.com",
		Present:       true,
		DetectedNodes: []string{"n1", "n2"},
	}, inv.Hosts[0])
}

func TestFactsPrintsYAML(t *testing.T) {
	out, err := execute(t, "facts", "--root", t.TempDir(), "--fqdn", "n3.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "host: n3")
	assert.Contains(t, out, "clusterPresent: false")
}

func TestJournalDisabled(t *testing.T) {
	_, err := execute(t, "journal", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal is disabled")
}

func TestApplyWithoutInventoryIgnoresCluster(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "desired.yaml")
	require.NoError(t, os.WriteFile(file, []byte("cluster:\n  name: web\n  nodeList: n1 n2\n"), 0o644))
	logFile := filepath.Join(dir, "burrow.log")

	out, err := execute(t, "apply", "-f", file, "--host", "n1", "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 objects changed")

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "Ignoring cluster section, no inventory given")
	assert.Contains(t, string(logs), `"component":"apply"`)
}

func TestWaitAlreadyStarted(t *testing.T) {
	pcsBin := filepath.Join(t.TempDir(), "pcs")
	require.NoError(t, os.WriteFile(pcsBin,
		[]byte("#!/bin/sh\nprintf '  * vip\\t(ocf:heartbeat:IPaddr2):\\t Started n1\\n'\n"), 0o755))

	out, err := execute(t, "wait", "vip", "--state", "started", "--pcs", pcsBin)
	require.NoError(t, err)
	assert.Contains(t, out, "vip: up to date")
}

func TestWaitRejectsUnknownState(t *testing.T) {
	_, err := execute(t, "wait", "vip", "--state", "running")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "state", verr.Field)
}
