// Package main provides the HTTP server for the site assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barracksmedia/site-assistant/internal/config"
	"github.com/barracksmedia/site-assistant/internal/server"
	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	if err := run(cfg, logger, *wipeDB); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, wipe bool) error {
	logger.Info("starting assistant-server",
		"version", version,
		"port", cfg.Port,
		"catalog_source", cfg.CatalogSource,
		"rate_limit_store", cfg.RateLimitStore,
		"llm_provider", cfg.LLMProvider,
	)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := server.NewDependencies(initCtx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("create dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			logger.Error("failed to close dependencies", "error", err)
		}
	}()

	if (wipe || os.Getenv("ASSISTANT_WIPE_DB") == "true") && deps.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := deps.DB.WipeData(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("wipe database: %w", err)
		}
	}

	srv := server.New(deps.Assistant, deps.Governor, deps.Metrics, logger)
	if deps.DB != nil {
		srv.SetHealthCheck(deps.DB.Ping)
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.LLMTimeout + cfg.TTSTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("voicebot endpoint available", "url", fmt.Sprintf("http://localhost:%s/api/voicebot", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return deps.Governor.RunPurger(gctx, cfg.RateLimitPurge)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
