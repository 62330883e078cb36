package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridnode/supervisor/internal/adminapi"
	"github.com/gridnode/supervisor/internal/config"
	"github.com/gridnode/supervisor/internal/node"
	"github.com/gridnode/supervisor/internal/observer"
	"github.com/gridnode/supervisor/internal/supervisor"
	"github.com/gridnode/supervisor/pkg/logger"
	"github.com/gridnode/supervisor/pkg/metrics"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the node hosting supervisors and the admin HTTP surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(serveConfigPath)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to the node's YAML config file")
}

func runServe(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	metricsRegistry := metrics.DefaultRegistry()

	bus := observer.NewBus(log, observer.NewMetrics(metricsRegistry.Namespace()))
	busCtx, busCancel := context.WithCancel(context.Background())
	defer busCancel()
	if err := bus.Start(busCtx); err != nil {
		return fmt.Errorf("starting observer bus: %w", err)
	}

	manager, err := node.NewManager(log, cfg, bus, metricsRegistry)
	if err != nil {
		return fmt.Errorf("building node manager: %w", err)
	}

	router := adminapi.NewRouter(adminapi.RouterConfig{
		Logger:        log,
		Manager:       manager,
		Bus:           bus,
		EnableMetrics: true,
		EnableDocs:    true,
	})

	httpServer := &http.Server{
		Addr:         cfg.Admin.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Admin.ReadTimeout,
		WriteTimeout: cfg.Admin.WriteTimeout,
	}

	serverErrs := make(chan error, 1)
	go func() {
		log.Info("admin HTTP surface starting", "addr", cfg.Admin.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrs <- err
		}
	}()

	shutdownDone := make(chan struct{})
	shutdown := NewShutdownHandler(log, func(ctx context.Context) {
		defer close(shutdownDone)
		drainTimeout := cfg.Admin.ShutdownTimeout
		if drainTimeout <= 0 {
			drainTimeout = 15 * time.Second
		}
		drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
		defer cancel()

		drainServers(drainCtx, log, manager)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), drainTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("admin HTTP surface forced to shutdown", "error", err)
		}
		if err := bus.Stop(shutdownCtx); err != nil {
			log.Error("observer bus stop timed out", "error", err)
		}
	})
	shutdown.Start()

	select {
	case err := <-serverErrs:
		return fmt.Errorf("admin HTTP surface failed: %w", err)
	case <-shutdownDone:
		log.Info("supervisord shut down cleanly")
		return nil
	}
}

// drainServers stops every server this node hosts concurrently, waiting
// for each Supervisor's Stop callback or ctx's deadline, whichever comes
// first, per §10.4's "SIGINT/SIGTERM-triggered supervisor drain".
func drainServers(ctx context.Context, log *slog.Logger, manager *node.Manager) {
	ids := manager.List()
	var wg sync.WaitGroup
	for _, id := range ids {
		s, ok := manager.Lookup(id)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(id string, s *supervisor.Supervisor) {
			defer wg.Done()
			done := make(chan struct{}, 1)
			if err := s.Stop(func(supervisor.StartResult) { done <- struct{}{} }); err != nil {
				return
			}
			select {
			case <-done:
			case <-ctx.Done():
				log.Info("drain timed out waiting for server stop", "server_id", id)
			}
		}(id, s)
	}
	wg.Wait()
}
