package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/app"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	"github.com/zatekoja/medtourclinic/pkg/config"
	"github.com/zatekoja/medtourclinic/pkg/secrets"
)

func main() {
	if res, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Str("path", res.Path).Msg("failed to load vault secrets")
	} else if res.Enabled {
		log.Info().Str("path", res.Path).Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-worker", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	application, err := app.New(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("error closing application")
		}
	}()

	jobs := []services.Job{
		services.CurrencySyncJob(cfg.Scheduler.CurrencySyncSpec, application.CurrencySync),
		services.MetaLeadSyncJob(cfg.Scheduler.MetaSyncSpec, application.MetaSync),
	}
	if application.CacheWarmer != nil {
		jobs = append(jobs, services.RateCacheWarmJob(cfg.Scheduler.RateCacheWarmSpec, application.CacheWarmer))
	}

	scheduler, err := services.NewScheduler(time.Local, jobs...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	scheduler.Start()
	for _, job := range jobs {
		if next, ok := scheduler.Next(job.Name); ok {
			log.Info().Str("job", job.Name).Time("next_run", next).Msg("job scheduled")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("worker shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("scheduled jobs did not finish in time")
	}

	log.Info().Msg("worker stopped")
}
