package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tickerwatch/disclosure-comb/app/api"
	"github.com/tickerwatch/disclosure-comb/app/cfg"
	"github.com/tickerwatch/disclosure-comb/app/disclosure"
	"github.com/tickerwatch/disclosure-comb/app/logger"
	"github.com/tickerwatch/disclosure-comb/app/tasks"
	"github.com/tickerwatch/disclosure-comb/app/watch"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logger.Setup(appCfg.Debug)
	slog.Info("Starting Disclosure Comb", "version", appCfg.Version)

	configCache := watch.NewConfigCache(appCfg.WatchesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load watch configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Watch configurations loaded", "count", configCache.GetConfigCount())

	if appCfg.Once {
		if err := refreshAll(configCache); err != nil {
			slog.Error("Refresh run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	scheduler := tasks.NewScheduler(configCache)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started",
		"workers", appCfg.WorkerCount,
		"interval", time.Duration(appCfg.SchedulerInterval)*time.Second)

	handler := api.NewHandler(configCache, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// refreshAll runs the reconciliation pipeline once for every enabled watch.
// Any watch failing fails the whole run after the remaining watches have had
// their chance.
func refreshAll(configCache *watch.ConfigCache) error {
	appCfg := cfg.Get()
	httpClient := &http.Client{}
	reconciler := disclosure.NewReconciler()
	writer := disclosure.NewWriter()

	configs := configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Warn("No enabled watches to refresh")
		return nil
	}

	failures := 0
	for name, config := range configs {
		task := tasks.NewRefreshWatchTask(config, httpClient, reconciler, writer,
			appCfg.OutputDir, appCfg.UserAgent)
		task.Start()

		if err := task.Execute(context.Background()); err != nil {
			slog.Error("Watch refresh failed", "watch", name, "error", err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d watches failed", failures, len(configs))
	}

	return nil
}
