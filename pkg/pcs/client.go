package pcs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/avast/retry-go"
	"github.com/cuemby/burrow/pkg/cib"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
)

var (
	// pcs 0.12 requires "score=" in front of location scores
	versionScorePrefix = semver.MustParse("0.12.0")
	// pcs 0.11 replaced "property show" with "property config" and
	// Master/Slave with Promoted/Unpromoted
	versionPropertyConfig = semver.MustParse("0.11.0")
	// pcs 0.10 introduced the knet era "cluster setup NAME NODES" syntax
	versionNewSetup = semver.MustParse("0.10.0")
)

// Client runs pcs commands against the live cluster or a CIB file
type Client struct {
	runner     Runner
	binary     string
	cibFile    string
	version    *semver.Version
	retryDelay time.Duration
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBinary sets the pcs executable (default "pcs")
func WithBinary(path string) Option {
	return func(c *Client) { c.binary = path }
}

// WithCIBFile makes every configuration command operate on a CIB file
// instead of the live cluster
func WithCIBFile(path string) Option {
	return func(c *Client) { c.cibFile = path }
}

// WithVersion skips version detection
func WithVersion(v *semver.Version) Option {
	return func(c *Client) { c.version = v }
}

// WithRetryDelay sets the pause before the CIB replace timeout retry
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a pcs client
func NewClient(runner Runner, opts ...Option) *Client {
	c := &Client{
		runner:     runner,
		binary:     "pcs",
		retryDelay: 2 * time.Second,
		logger:     log.WithComponent("pcs"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run executes pcs with args. When file is non-empty the command is
// scoped to that CIB file with -f.
func (c *Client) run(ctx context.Context, file string, args ...string) (Result, error) {
	argv := []string{c.binary}
	if file != "" {
		argv = append(argv, "-f", file)
	}
	argv = append(argv, args...)

	verb := "version"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		verb = args[0]
	}
	cmdline := Redact(shellquote.Join(argv...))

	c.logger.Debug().Str("command", cmdline).Msg("Running pcs")

	timer := metrics.NewTimer()
	res, err := c.runner.Run(ctx, argv)
	timer.ObserveDurationVec(metrics.CommandDuration, verb)
	if err != nil {
		metrics.CommandFailures.WithLabelValues(verb).Inc()
		return res, fmt.Errorf("failed to run %s: %w", cmdline, err)
	}

	if res.ExitCode != 0 {
		metrics.CommandFailures.WithLabelValues(verb).Inc()
		c.logger.Debug().
			Str("command", cmdline).
			Int("exit_code", res.ExitCode).
			Str("stderr", Redact(res.Stderr)).
			Msg("pcs command failed")
		return res, &ExternalToolError{
			Command:  cmdline,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// Version returns the pcs version, detecting it on first use
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	if c.version != nil {
		return c.version, nil
	}

	res, err := c.run(ctx, "", "--version")
	if err != nil {
		return nil, fmt.Errorf("failed to detect pcs version: %w", err)
	}

	line := strings.TrimSpace(strings.SplitN(res.Stdout, "\n", 2)[0])
	v, err := semver.NewVersion(line)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pcs version %q: %w", line, err)
	}
	c.version = v
	return v, nil
}

func (c *Client) atLeast(ctx context.Context, min *semver.Version) (bool, error) {
	v, err := c.Version(ctx)
	if err != nil {
		return false, err
	}
	return !v.LessThan(min), nil
}

// GetConfiguration loads the CIB, from the CIB file when one is set
func (c *Client) GetConfiguration(ctx context.Context) (*cib.Document, error) {
	if c.cibFile != "" {
		return cib.LoadFile(c.cibFile)
	}

	res, err := c.run(ctx, "", "cluster", "cib")
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster configuration: %w", err)
	}
	return cib.Parse([]byte(res.Stdout))
}

// ApplyConfiguration replaces the whole CIB with doc
func (c *Client) ApplyConfiguration(ctx context.Context, doc *cib.Document) error {
	if c.cibFile != "" {
		return doc.WriteFile(c.cibFile)
	}

	f, err := os.CreateTemp("", "burrow-cib-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create CIB push file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := doc.WriteFile(path); err != nil {
		return err
	}
	if _, err := c.run(ctx, "", "cluster", "cib-push", path); err != nil {
		return fmt.Errorf("failed to push cluster configuration: %w", err)
	}
	return nil
}

// CreateResource creates a resource or stonith device. A CIB replace
// timeout is retried exactly once.
func (c *Client) CreateResource(ctx context.Context, spec types.ResourceSpec) error {
	args, err := resourceCreateArgs(spec)
	if err != nil {
		return err
	}

	return retry.Do(
		func() error {
			_, err := c.run(ctx, c.cibFile, args...)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isCIBReplaceTimeout),
		retry.OnRetry(func(n uint, err error) {
			metrics.CommandRetries.Inc()
			c.logger.Warn().Err(err).Str("resource", spec.Name).Msg("CIB replace timed out, retrying create")
		}),
	)
}

// MaterializeResource creates the resource in the given scratch CIB file
// only. The live cluster is never touched.
func (c *Client) MaterializeResource(ctx context.Context, spec types.ResourceSpec, file string) error {
	args, err := resourceCreateArgs(spec)
	if err != nil {
		return err
	}
	if _, err := c.run(ctx, file, args...); err != nil {
		return fmt.Errorf("failed to materialize resource %s in sandbox: %w", spec.Name, err)
	}
	return nil
}

// DeleteResource deletes a resource or stonith device
func (c *Client) DeleteResource(ctx context.Context, spec types.ResourceSpec) error {
	_, err := c.run(ctx, c.cibFile, resourceVerb(spec.Class), "delete", spec.Name)
	return err
}

// ResourceStatus returns the runtime status of one primitive
func (c *Client) ResourceStatus(ctx context.Context, name string) (types.ResourceStatus, error) {
	res, err := c.run(ctx, "", "resource", "status")
	if err != nil {
		return types.ResourceStatus{}, fmt.Errorf("failed to read resource status: %w", err)
	}
	statuses, err := ParseResourceStatus(res.Stdout)
	if err != nil {
		return types.ResourceStatus{}, err
	}
	st, ok := FindResourceStatus(statuses, name)
	if !ok {
		return types.ResourceStatus{}, fmt.Errorf("resource %s not found in resource status", name)
	}
	return st, nil
}

// SetTargetRole sets the target-role meta attribute of a resource
func (c *Client) SetTargetRole(ctx context.Context, name, role string) error {
	_, err := c.run(ctx, c.cibFile, "resource", "meta", name, "target-role="+role)
	return err
}

// CleanupResource clears the failure history of a resource
func (c *Client) CleanupResource(ctx context.Context, name string) error {
	_, err := c.run(ctx, "", "resource", "cleanup", name)
	return err
}

// CreateConstraint creates an order, colocation or location constraint
func (c *Client) CreateConstraint(ctx context.Context, con types.Constraint) error {
	args, err := c.constraintCreateArgs(ctx, con)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, c.cibFile, args...)
	return err
}

// DeleteConstraint deletes a constraint by id
func (c *Client) DeleteConstraint(ctx context.Context, id string) error {
	_, err := c.run(ctx, c.cibFile, "constraint", "delete", id)
	return err
}

// ListProperties returns the configured cluster properties
func (c *Client) ListProperties(ctx context.Context) (map[string]string, error) {
	verb := "show"
	if ok, err := c.atLeast(ctx, versionPropertyConfig); err != nil {
		return nil, err
	} else if ok {
		verb = "config"
	}

	res, err := c.run(ctx, c.cibFile, "property", verb)
	if err != nil {
		return nil, fmt.Errorf("failed to list cluster properties: %w", err)
	}
	return ParseProperties(res.Stdout)
}

// SetProperty sets a cluster property
func (c *Client) SetProperty(ctx context.Context, name, value string) error {
	_, err := c.run(ctx, c.cibFile, "property", "set", name+"="+value)
	return err
}

// UnsetProperty removes a cluster property
func (c *Client) UnsetProperty(ctx context.Context, name string) error {
	_, err := c.run(ctx, c.cibFile, "property", "unset", name)
	return err
}

// SetupCluster creates and starts a new cluster on the desired nodes
func (c *Client) SetupCluster(ctx context.Context, d types.DesiredMembership) error {
	newSyntax, err := c.atLeast(ctx, versionNewSetup)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, "", setupArgs(d, newSyntax)...)
	return err
}

// DestroyCluster removes the cluster configuration from this host
func (c *Client) DestroyCluster(ctx context.Context) error {
	_, err := c.run(ctx, "", "cluster", "destroy")
	return err
}

// AddNode adds a node to the running cluster and starts it
func (c *Client) AddNode(ctx context.Context, node string) error {
	_, err := c.run(ctx, "", "cluster", "node", "add", node, "--start", "--enable")
	return err
}

// RemoveNode removes a node from the running cluster
func (c *Client) RemoveNode(ctx context.Context, node string) error {
	_, err := c.run(ctx, "", "cluster", "node", "remove", node)
	return err
}
