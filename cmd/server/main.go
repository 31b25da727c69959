// Command server runs the front-desk dashboard backend: it polls the clinic's
// sheet feeds on a fixed interval, keeps the classified in-memory state, and
// serves the dashboard HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/config"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	httpapi "github.com/whitesmile/frontdesk-backend/internal/http"
	"github.com/whitesmile/frontdesk-backend/internal/observability"
	"github.com/whitesmile/frontdesk-backend/internal/poller"
	"github.com/whitesmile/frontdesk-backend/internal/repo"
	"github.com/whitesmile/frontdesk-backend/internal/sysutil"
)

var version = "dev"

// @title        Front Desk Backend API
// @version      1.0
// @description  Dashboard backend for the clinic's WhatsApp front-desk workflow.
// @BasePath     /api/v1
func main() {
	// .env is optional; OS environment wins.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger := log.With().Str("service", cfg.OTEL.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open idempotency store")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate idempotency store")
	}
	go repo.PurgeLoop(ctx, db, time.Hour, logger)

	client := feeds.NewClient(cfg.Feeds.BaseURL, cfg.Feeds.ServiceKey, logger)
	tracker := classify.NewRecallTracker(cfg.Feeds.AlertTTL)
	p := poller.New(client, tracker, cfg.Feeds.PollEvery, logger)
	go p.Run(ctx)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, p, client, cfg, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("poll_every", cfg.Feeds.PollEvery.String()).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
