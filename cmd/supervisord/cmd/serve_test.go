package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridnode/supervisor/internal/config"
	"github.com/gridnode/supervisor/internal/node"
	"github.com/gridnode/supervisor/internal/supervisor"
	"github.com/gridnode/supervisor/pkg/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManagerForDrain(t *testing.T, namespace string) *node.Manager {
	t.Helper()
	cfg := &config.NodeConfig{ServersDir: t.TempDir(), WaitTime: 30}
	registry := metrics.NewMetricsRegistry(namespace)
	m, err := node.NewManager(discardLogger(), cfg, nil, registry)
	require.NoError(t, err)
	return m
}

func TestDrainServers_EmptyManagerReturnsImmediately(t *testing.T) {
	m := newTestManagerForDrain(t, "cmd_test_drain_empty")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		drainServers(ctx, discardLogger(), m)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainServers on an empty manager should return almost immediately")
	}
}

func TestDrainServers_StopsActiveServer(t *testing.T) {
	m := newTestManagerForDrain(t, "cmd_test_drain_active")

	s := m.Get("srv1")
	desc := &supervisor.Descriptor{
		ID:         "srv1",
		UUID:       "uuid-1",
		Exe:        "/bin/sh",
		Options:    []string{"-c", "sleep 5"},
		Activation: supervisor.ActivationManual,
	}

	loadDone := make(chan struct{})
	require.NoError(t, s.Load(desc, "", func(supervisor.LoadResult) { close(loadDone) }))
	<-loadDone

	startDone := make(chan struct{})
	require.NoError(t, s.Start(supervisor.ActivationManual, func(supervisor.StartResult) { close(startDone) }))
	<-startDone

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		drainServers(ctx, discardLogger(), m)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("drainServers should stop the running server well before the deadline")
	}

	assert.NotEqual(t, "Active", string(s.GetState()))
}

func TestDrainServers_NeverStartedServerHitsDeadline(t *testing.T) {
	m := newTestManagerForDrain(t, "cmd_test_drain_neverstarted")
	m.Get("srv1")

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	drainServers(ctx, discardLogger(), m)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "a server that never started has no Stop precondition match and should wait out the ctx deadline")
}
