package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/gateway"
	"github.com/dotfriends/asca/internal/blocklist"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/di"
	"github.com/dotfriends/asca/internal/metrics"
	"github.com/dotfriends/asca/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	gw ports.MessageGateway,
	store *blocklist.Store,
	tenants core.TenantStore,
	cache core.MessageCache,
) error {
	defer logger.Sync()

	// Start the blocklist refresh loop
	store.Start()

	// Start the metrics endpoint
	var metricsServer *http.Server
	if cfg.GetBool("metrics.enabled") {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:    cfg.GetString("metrics.listen_address"),
			Handler: mux,
		}
		go func() {
			logger.Info("Metrics endpoint starting",
				zap.String("address", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	// Start the gateway
	if err := gw.Start(); err != nil {
		logger.Fatal("Failed to start gateway", zap.Error(err))
		return err
	}

	// Handle graceful shutdown; a stdin gateway also ends the run once its
	// input is exhausted, so piped replays terminate on their own.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	inputDone := make(chan struct{})
	if sg, ok := gw.(*gateway.StdinGateway); ok {
		go func() {
			sg.Wait()
			close(inputDone)
		}()
	}

	select {
	case <-sigCh:
		logger.Info("Shutting down...")
	case <-inputDone:
		logger.Info("Input exhausted, shutting down...")
	}

	// Stop the gateway
	if err := gw.Stop(); err != nil {
		logger.Error("Failed to stop gateway", zap.Error(err))
	}

	// Stop the blocklist refresh loop
	store.Stop()

	// Stop the metrics endpoint
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to stop metrics server", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if err := tenants.Close(); err != nil {
		logger.Error("Failed to close tenant store", zap.Error(err))
	}
	if closer, ok := cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close message cache", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
