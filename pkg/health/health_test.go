package health

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	res := NewTCPChecker("peer", ln.Addr().String()).Check(context.Background())
	assert.True(t, res.Healthy, res.Message)
	assert.Contains(t, res.Message, "reachable")
}

func TestTCPCheckerRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	res := NewTCPChecker("peer", addr).WithTimeout(time.Second).Check(context.Background())
	assert.False(t, res.Healthy)
	assert.Contains(t, res.Message, "connection failed")
}

func TestPCSDChecker(t *testing.T) {
	c := NewPCSDChecker("n2.example.com")
	assert.Equal(t, "pcsd/n2.example.com", c.Name())
	assert.Equal(t, "n2.example.com:2224", c.Address)
}

func TestRunRegistersResults(t *testing.T) {
	metrics.ResetHealth()
	defer metrics.ResetHealth()

	results := Run(context.Background(),
		&FuncChecker{Component: "pcs", Fn: func(ctx context.Context) (string, error) { return "0.11.7", nil }},
		&FuncChecker{Component: "cib", Fn: func(ctx context.Context) (string, error) {
			return "", errors.New("cib is not readable")
		}},
	)

	require.Len(t, results, 2)
	assert.True(t, results["pcs"].Healthy)
	assert.Equal(t, "0.11.7", results["pcs"].Message)
	assert.False(t, results["cib"].Healthy)

	status := metrics.GetReadiness()
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "cib: cib is not readable", status.Message)
}
