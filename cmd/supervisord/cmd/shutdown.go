package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ShutdownHandler listens for SIGINT/SIGTERM and runs a single drain
// callback exactly once, adapted from the teacher's SIGHUP hot-reload
// signal handler (go-app/cmd/server/signal.go) to a one-shot graceful
// shutdown instead of a repeating reload.
type ShutdownHandler struct {
	logger *slog.Logger
	drain  func(context.Context)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sigChan chan os.Signal
}

// NewShutdownHandler builds a ShutdownHandler that invokes drain once a
// SIGINT or SIGTERM is received.
func NewShutdownHandler(logger *slog.Logger, drain func(context.Context)) *ShutdownHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownHandler{
		logger:  logger,
		drain:   drain,
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
	}
}

// Start begins listening for signals in the background.
func (h *ShutdownHandler) Start() {
	signal.Notify(h.sigChan, os.Interrupt, syscall.SIGTERM)
	h.wg.Add(1)
	go h.signalListener()
}

// Stop cancels signal listening without running the drain callback.
func (h *ShutdownHandler) Stop() {
	signal.Stop(h.sigChan)
	h.cancel()
	h.wg.Wait()
}

func (h *ShutdownHandler) signalListener() {
	defer h.wg.Done()

	select {
	case sig, ok := <-h.sigChan:
		if !ok {
			return
		}
		h.logger.Info("received shutdown signal", "signal", sig.String())
		h.drain(h.ctx)
	case <-h.ctx.Done():
	}
}
