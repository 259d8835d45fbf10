package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studymate-backend/internal/bootstrap"
	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/server"
	"studymate-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Migrate: true})
	if err != nil {
		telemetry.Error("api.bootstrap.failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			telemetry.Warn("api.shutdown.failed", map[string]any{"err": err.Error()})
		}
	}()

	telemetry.Info("api.start", map[string]any{"addr": addr, "env": cfg.Env})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("api.server.failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("api.stopped", nil)
}
