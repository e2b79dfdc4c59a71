package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/config"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/infra"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/report"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/router"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/syncer"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/token"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Report artifacts and download credentials
	reports := report.NewGenerator(cfg.ReportsDir, cfg.ReportPrefix, cfg.ReportRetentionDays, cfg.ReportPDFSummary)
	tokens := token.NewIssuer(cfg.DownloadTokenSecret)

	// Remote mirror: gateway client behind a circuit breaker, failures
	// escalated to the Redis alert list and optionally the admin mailbox.
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	remote := infra.NewRemoteStorageClient(cfg.SyncRemoteBaseURL, cb)
	var mailer *infra.Mailer
	if cfg.SMTPHost != "" {
		mailer = infra.NewMailer(cfg)
	}
	notifier := worker.NewAlertNotifier(rdb, cfg.NotifyChannel, mailer, cfg.NotifyAdminEmail)
	syncSvc := syncer.New(remote, notifier, cfg.SyncMaxRetries, cfg.SyncRetryDelay())

	// Periodic mirror task — handle retained for graceful shutdown.
	syncCron := worker.StartSyncCron(ctx, syncSvc, cfg.ReportsDir, cfg.SyncRemotePrefix, cfg.SyncInterval(), cfg.SyncEnabled)

	r := router.New(cfg, db, rdb, cb, reports, tokens, syncSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("recyclic back office listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	// Cancel and join the sync goroutine: no mirror work outlives the process.
	cancel()
	syncCron.Stop()

	log.Info().Msg("server exited")
}
