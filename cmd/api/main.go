package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/api/handlers"
	"github.com/zatekoja/medtourclinic/internal/api/routes"
	"github.com/zatekoja/medtourclinic/internal/app"
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

	observability.InitLogger(cfg.OTEL.ServiceName+"-api", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
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
			log.Info().Msg("OpenTelemetry initialized")
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

	checks := map[string]handlers.HealthCheck{"postgres": application.Postgres.Ping}
	if application.Redis != nil {
		checks["redis"] = application.Redis.Ping
	}

	router := routes.NewRouter(
		handlers.NewHealthHandler(checks),
		handlers.NewCurrencyHandler(application.Pricing, application.CurrencySync),
		handlers.NewLeadHandler(application.Leads, application.Analytics),
		handlers.NewMetaHandler(application.MetaSync),
		handlers.NewChatHandler(application.Chat),
		handlers.NewWebSocketHandler(application.EventBus, cfg.Server.AllowedOrigins),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// Currency and Meta syncs call upstream APIs inside the request.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
