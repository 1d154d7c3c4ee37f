package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/seolens/internal/api"
	"github.com/dgallion1/seolens/internal/config"
	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/pipeline"
	"github.com/dgallion1/seolens/internal/reportstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	claude := generate.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel,
		generate.WithBaseURL(cfg.AnthropicBaseURL),
		generate.WithMaxTokens(cfg.AnthropicMaxTokens),
		generate.WithRateLimit(cfg.AnthropicRPS),
	)

	var (
		reports *reportstore.Store
		saver   pipeline.ReportSaver
	)
	if cfg.ReportstoreURL != "" {
		reports = reportstore.NewStore(reportstore.NewClient(cfg.ReportstoreURL, cfg.ReportstoreAPIKey), cfg.MaxConcurrentStore)
		saver = reports
	} else {
		log.Info("REPORTSTORE_URL not set, reports will not be persisted")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, claude, saver, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, claude, reports, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		claude.Close()
		if reports != nil {
			reports.Close()
		}
	}()

	log.Info("starting seolens", "port", cfg.Port, "model", cfg.AnthropicModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
