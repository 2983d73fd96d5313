package pcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCIB = `<cib validate-with="pacemaker-3.9" epoch="3">
  <configuration><crm_config/><resources/><constraints/></configuration>
  <status/>
</cib>`

func newTestClient(version string, opts ...Option) (*Client, *fakeRunner) {
	runner := newFakeRunner()
	opts = append([]Option{WithVersion(semver.MustParse(version)), WithRetryDelay(0)}, opts...)
	return NewClient(runner, opts...), runner
}

func TestVersionDetection(t *testing.T) {
	runner := newFakeRunner()
	runner.on("--version", Result{Stdout: "0.11.7\n"})
	c := NewClient(runner)

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.11.7", v.String())

	_, err = c.Version(context.Background())
	require.NoError(t, err)
	assert.Len(t, runner.calls, 1, "version is detected once")
}

func TestVersionDetectionFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.on("--version", Result{Stdout: "not a version\n"})
	c := NewClient(runner)

	_, err := c.Version(context.Background())
	assert.Error(t, err)
}

func TestCreateResource(t *testing.T) {
	tests := []struct {
		name string
		spec types.ResourceSpec
		want string
	}{
		{
			name: "ocf with options",
			spec: types.ResourceSpec{Name: "vip", Class: types.ResourceClassOCF, Type: "ocf:heartbeat:IPaddr2",
				Options: `ip=192.168.1.10 cidr_netmask=24 op monitor interval="10s"`},
			want: "resource create vip ocf:heartbeat:IPaddr2 ip=192.168.1.10 cidr_netmask=24 op monitor interval=10s",
		},
		{
			name: "systemd gets the class prefix",
			spec: types.ResourceSpec{Name: "web", Class: types.ResourceClassSystemd, Type: "httpd"},
			want: "resource create web systemd:httpd",
		},
		{
			name: "stonith",
			spec: types.ResourceSpec{Name: "fence-n1", Class: types.ResourceClassStonith, Type: "stonith:fence_ipmilan",
				Options: "ip=10.0.0.1 password='s3 cret'"},
			want: "stonith create fence-n1 fence_ipmilan ip=10.0.0.1 password=s3 cret",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runner := newTestClient("0.11.7")
			require.NoError(t, c.CreateResource(context.Background(), tt.spec))
			assert.Equal(t, []string{tt.want}, runner.commands())
		})
	}
}

func TestCreateResourceRetriesCIBReplaceTimeoutOnce(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	timeout := Result{ExitCode: 1, Stderr: "Error: " + cibReplaceTimeout}
	runner.on("resource create vip ocf:heartbeat:IPaddr2", timeout, Result{})

	require.NoError(t, c.CreateResource(context.Background(),
		types.ResourceSpec{Name: "vip", Type: "ocf:heartbeat:IPaddr2"}))
	assert.Len(t, runner.calls, 2)
}

func TestIsCIBReplaceTimeout(t *testing.T) {
	timeout := &ExternalToolError{Command: "pcs resource create vip", ExitCode: 1, Stderr: "Error: " + cibReplaceTimeout}

	assert.True(t, isCIBReplaceTimeout(timeout))
	assert.True(t, isCIBReplaceTimeout(fmt.Errorf("create vip: %w", timeout)))
	assert.False(t, isCIBReplaceTimeout(&ExternalToolError{ExitCode: 1, Stderr: "Error: unable to find agent"}))
	assert.False(t, isCIBReplaceTimeout(errors.New(cibReplaceTimeout)))
}

func TestCreateResourceGivesUpAfterSecondTimeout(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	timeout := Result{ExitCode: 1, Stderr: "Error: " + cibReplaceTimeout}
	runner.on("resource create vip ocf:heartbeat:IPaddr2", timeout, timeout, Result{})

	err := c.CreateResource(context.Background(), types.ResourceSpec{Name: "vip", Type: "ocf:heartbeat:IPaddr2"})
	var toolErr *ExternalToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 1, toolErr.ExitCode)
	assert.Len(t, runner.calls, 2)
}

func TestCreateResourceDoesNotRetryOtherErrors(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	runner.on("resource create vip ocf:heartbeat:IPaddr2", Result{ExitCode: 1, Stderr: "Error: unable to find agent"})

	err := c.CreateResource(context.Background(), types.ResourceSpec{Name: "vip", Type: "ocf:heartbeat:IPaddr2"})
	require.Error(t, err)
	assert.Len(t, runner.calls, 1)
	assert.Contains(t, err.Error(), "unable to find agent")
}

func TestCIBFileScopesConfigurationCommands(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cib.xml")
	c, runner := newTestClient("0.10.8", WithCIBFile(file))
	ctx := context.Background()

	require.NoError(t, c.DeleteConstraint(ctx, "order-a-b"))
	require.NoError(t, c.SetProperty(ctx, "stonith-enabled", "false"))
	require.NoError(t, c.AddNode(ctx, "n3"))

	assert.Equal(t, []string{
		"-f " + file + " constraint delete order-a-b",
		"-f " + file + " property set stonith-enabled=false",
		"cluster node add n3 --start --enable",
	}, runner.commands())
}

func TestMaterializeResourceUsesSandbox(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	require.NoError(t, c.MaterializeResource(context.Background(),
		types.ResourceSpec{Name: "vip", Type: "ocf:heartbeat:IPaddr2"}, "/tmp/sandbox.xml"))
	assert.Equal(t, []string{"-f /tmp/sandbox.xml resource create vip ocf:heartbeat:IPaddr2"}, runner.commands())
}

func TestGetAndApplyConfigurationFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cib.xml")
	require.NoError(t, os.WriteFile(file, []byte(testCIB), 0o600))

	c, runner := newTestClient("0.11.7", WithCIBFile(file))
	ctx := context.Background()

	doc, err := c.GetConfiguration(ctx)
	require.NoError(t, err)
	doc.Resources().CreateElement("primitive").CreateAttr("id", "vip")
	require.NoError(t, c.ApplyConfiguration(ctx, doc))

	again, err := c.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.NotNil(t, again.FindResource("vip"))
	assert.Empty(t, runner.calls)
}

func TestGetAndApplyConfigurationLive(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	runner.on("cluster cib", Result{Stdout: testCIB})
	ctx := context.Background()

	doc, err := c.GetConfiguration(ctx)
	require.NoError(t, err)
	require.NoError(t, c.ApplyConfiguration(ctx, doc))

	require.Len(t, runner.calls, 2)
	push := runner.calls[1]
	assert.Equal(t, []string{"pcs", "cluster", "cib-push"}, push[:3])
	_, statErr := os.Stat(push[3])
	assert.True(t, os.IsNotExist(statErr), "push file is removed afterwards")
}

func TestListProperties(t *testing.T) {
	tests := []struct {
		version string
		cmd     string
		out     string
	}{
		{"0.10.8", "property show", "Cluster Properties:\n cluster-name: hacluster\n stonith-enabled: false\n"},
		{"0.11.7", "property config", "Cluster Properties: cib-bootstrap-options\n  cluster-name=hacluster\n  stonith-enabled=false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			c, runner := newTestClient(tt.version)
			runner.on(tt.cmd, Result{Stdout: tt.out})

			props, err := c.ListProperties(context.Background())
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"cluster-name": "hacluster", "stonith-enabled": "false"}, props)
		})
	}
}

func TestSetupCluster(t *testing.T) {
	d := types.DesiredMembership{ClusterName: "hacluster", Nodes: []string{"n1", "n2"}, Token: 5000, Transport: "udpu"}

	tests := []struct {
		version string
		want    string
	}{
		{"0.9.169", "cluster setup --name hacluster n1 n2 --token 5000 --transport udpu --start --enable"},
		{"0.10.8", "cluster setup hacluster n1 n2 transport udpu totem token=5000 --start --enable"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			c, runner := newTestClient(tt.version)
			require.NoError(t, c.SetupCluster(context.Background(), d))
			assert.Equal(t, []string{tt.want}, runner.commands())
		})
	}

	c, runner := newTestClient("0.11.7")
	require.NoError(t, c.SetupCluster(context.Background(),
		types.DesiredMembership{ClusterName: "c", Nodes: []string{"n1"}, Transport: "default"}))
	assert.Equal(t, []string{"cluster setup c n1 --start --enable"}, runner.commands())
}

func TestMembershipCommands(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	ctx := context.Background()

	require.NoError(t, c.DestroyCluster(ctx))
	require.NoError(t, c.RemoveNode(ctx, "n3"))

	assert.Equal(t, []string{"cluster destroy", "cluster node remove n3"}, runner.commands())
}

func TestExternalToolErrorIsRedacted(t *testing.T) {
	c, runner := newTestClient("0.11.7")
	runner.on("stonith create f fence_ipmilan password=hunter2",
		Result{ExitCode: 2, Stderr: "bad password=hunter2"})

	err := c.CreateResource(context.Background(), types.ResourceSpec{
		Name: "f", Class: types.ResourceClassStonith, Type: "fence_ipmilan", Options: "password=hunter2",
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")

	var toolErr *ExternalToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 2, toolErr.ExitCode)
	assert.NotContains(t, toolErr.Command, "hunter2")
}
