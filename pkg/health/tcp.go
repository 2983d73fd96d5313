package health

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// PCSDPort is where pcsd listens for requests from other cluster nodes
const PCSDPort = 2224

// TCPChecker checks that a peer accepts TCP connections, e.g. that pcsd
// is reachable on another node
type TCPChecker struct {
	Component string
	Address   string

	// Timeout is the connection timeout (default: 5 seconds)
	Timeout time.Duration
}

// NewTCPChecker creates a new TCP checker
func NewTCPChecker(component, address string) *TCPChecker {
	return &TCPChecker{
		Component: component,
		Address:   address,
		Timeout:   5 * time.Second,
	}
}

// NewPCSDChecker checks pcsd on host
func NewPCSDChecker(host string) *TCPChecker {
	return NewTCPChecker("pcsd/"+host, net.JoinHostPort(host, strconv.Itoa(PCSDPort)))
}

func (t *TCPChecker) Name() string { return t.Component }

// Check performs the TCP check
func (t *TCPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	dialer := &net.Dialer{
		Timeout: t.Timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("connection failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	defer conn.Close()

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("%s reachable", t.Address),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// WithTimeout sets the connection timeout
func (t *TCPChecker) WithTimeout(timeout time.Duration) *TCPChecker {
	t.Timeout = timeout
	return t
}
