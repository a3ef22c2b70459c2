package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/release-league/internal/app"
	"github.com/riskibarqy/release-league/internal/config"
	"github.com/riskibarqy/release-league/internal/observability"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	telemetry, err := observability.Start(cfg, observability.RoleAPI, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	logger := telemetry.Logger
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	srv, err := app.NewHTTPServer(cfg, components, logger)
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := components.Close(); err != nil {
		logger.Warn("close components", "error", err)
	}
	logger.Info("http server stopped")
	_ = telemetry.Shutdown(shutdownCtx)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
