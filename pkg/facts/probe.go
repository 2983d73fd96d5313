package facts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
)

// Paths whose existence means a cluster is configured on the host
var PresencePaths = []string{
	"/var/lib/pacemaker/cib/cib.xml",
	"/etc/cluster/cluster.conf",
	"/etc/corosync/corosync.conf",
}

// CorosyncConf is where the node list is read from
const CorosyncConf = "/etc/corosync/corosync.conf"

// ProbeOptions configures Gather
type ProbeOptions struct {
	// Host is the inventory name of this host (default: hostname)
	Host string
	// FQDN overrides the detected hostname
	FQDN string
	// Root is prepended to every probed path
	Root string
}

// Gather probes the local host for an existing cluster
func Gather(opts ProbeOptions) (types.ClusterFact, error) {
	logger := log.WithComponent("facts")

	fqdn := opts.FQDN
	if fqdn == "" {
		h, err := os.Hostname()
		if err != nil {
			return types.ClusterFact{}, fmt.Errorf("failed to read hostname: %w", err)
		}
		fqdn = h
	}
	fact := types.ClusterFact{Host: opts.Host, FQDN: fqdn}
	if fact.Host == "" {
		fact.Host = types.ShortName(fqdn)
	}

	for _, p := range PresencePaths {
		if _, err := os.Stat(filepath.Join(opts.Root, p)); err == nil {
			logger.Debug().Str("path", p).Msg("Cluster configuration found")
			fact.Present = true
			break
		}
	}

	f, err := os.Open(filepath.Join(opts.Root, CorosyncConf))
	switch {
	case os.IsNotExist(err):
		return fact, nil
	case err != nil:
		return fact, fmt.Errorf("failed to open corosync.conf: %w", err)
	}
	defer f.Close()

	nodes, err := ParseCorosyncNodes(f)
	if err != nil {
		return fact, err
	}
	fact.DetectedNodes = nodes
	return fact, nil
}
