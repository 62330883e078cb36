package cmd

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownHandler_DrainRunsOnceOnSignal(t *testing.T) {
	drainCalls := make(chan struct{}, 2)
	h := NewShutdownHandler(discardLogger(), func(ctx context.Context) {
		drainCalls <- struct{}{}
	})
	h.Start()
	defer h.Stop()

	h.sigChan <- syscall.SIGTERM

	select {
	case <-drainCalls:
	case <-time.After(time.Second):
		t.Fatal("drain was never invoked after a signal")
	}

	select {
	case <-drainCalls:
		t.Fatal("drain must run at most once per ShutdownHandler")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShutdownHandler_StopWithoutSignalNeverDrains(t *testing.T) {
	drained := false
	h := NewShutdownHandler(discardLogger(), func(ctx context.Context) {
		drained = true
	})
	h.Start()
	h.Stop()

	assert.False(t, drained)
}
