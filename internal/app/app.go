// Package app wires configuration, clients, adapters and services shared by
// the API server and the background worker.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/adapters/cache"
	"github.com/zatekoja/medtourclinic/internal/adapters/database"
	"github.com/zatekoja/medtourclinic/internal/adapters/events"
	"github.com/zatekoja/medtourclinic/internal/adapters/providers/exchangerate"
	"github.com/zatekoja/medtourclinic/internal/adapters/providers/meta"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/notifications"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	"github.com/zatekoja/medtourclinic/pkg/config"
)

// App holds the wired application services
type App struct {
	Config  *config.Config
	Metrics *observability.Metrics

	Postgres *postgres.Client
	Redis    *redis.Client
	EventBus providers.EventBus

	Pricing      *services.PricingService
	CurrencySync *services.CurrencySyncService
	Leads        *services.LeadService
	Analytics    *services.LeadAnalyticsService
	MetaSync     *services.MetaLeadSyncService
	Chat         *services.ChatService
	// CacheWarmer is nil when rates are not cached
	CacheWarmer *services.RateCacheWarmer
}

// New connects to PostgreSQL (required) and Redis (optional) and builds
// every service. Without Redis, rates are not cached and the event bus and
// chatbot throttle run in memory.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Metrics: metrics, Postgres: pgClient}

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; running without rate cache and with in-memory event bus")
	} else {
		a.Redis = redisClient
	}

	// Adapters
	rateRepo := database.NewCurrencyRateAdapter(pgClient)
	tenantRepo := database.NewTenantAdapter(pgClient)
	priceListRepo := database.NewPriceListAdapter(pgClient)
	leadRepo := database.NewLeadAdapter(pgClient)
	interactionRepo := database.NewLeadInteractionAdapter(pgClient)
	metaConfigRepo := database.NewMetaConfigAdapter(pgClient)
	chatRepo := database.NewChatMessageAdapter(pgClient)

	if a.Redis != nil {
		a.EventBus = events.NewRedisEventBus(a.Redis)
	} else {
		a.EventBus = events.NewMemoryEventBus()
	}

	var throttle providers.ThrottleStore = cache.NewMemoryThrottleStore()
	if a.Redis != nil && cfg.Chatbot.ThrottleStore == "redis" {
		throttle = cache.NewRedisThrottleStore(a.Redis)
	}

	// Currency
	resolver := services.NewRateResolver(rateRepo, tenantRepo, metrics)
	var converter services.CurrencyConverter = resolver
	var invalidator services.RateCacheInvalidator
	if a.Redis != nil {
		cached := services.NewCachedRateResolver(resolver, cache.NewRedisAdapter(a.Redis), cfg.Currency.RateCacheTTL, metrics)
		converter = cached
		invalidator = cached
		a.CacheWarmer = services.NewRateCacheWarmer(cached, tenantRepo, priceListRepo)
	}

	a.Pricing = services.NewPricingService(converter, rateRepo, priceListRepo, tenantRepo, invalidator)
	a.CurrencySync = services.NewCurrencySyncService(
		rateRepo,
		tenantRepo,
		[]providers.ExchangeRateProvider{
			exchangerate.NewAPIProvider(cfg.Currency.ExchangeRateAPIURL, cfg.Currency.RequestTimeout),
			exchangerate.NewTCMBProvider(cfg.Currency.TCMBURL, cfg.Currency.RequestTimeout),
		},
		cfg.Currency.DefaultSource,
		invalidator,
		metrics,
	)

	// Leads
	var sender providers.NotificationSender
	if cfg.WhatsApp.WhatsAppEnabled() {
		whatsapp, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
		if err != nil {
			log.Warn().Err(err).Msg("whatsapp sender disabled")
		} else {
			sender = whatsapp
		}
	}

	scorer := services.NewLeadScorer(nil)
	notifier := services.NewLeadNotificationService(sender, tenantRepo, scorer)
	a.Leads = services.NewLeadService(leadRepo, interactionRepo, scorer, a.EventBus, notifier, metrics)
	a.Analytics = services.NewLeadAnalyticsService(leadRepo, interactionRepo)
	a.MetaSync = services.NewMetaLeadSyncService(
		metaConfigRepo,
		meta.NewGraphClient(cfg.Meta.GraphBaseURL),
		leadRepo,
		a.Leads,
		cfg.Meta.FetchLimit,
	)

	// Chat
	bot := services.NewChatbot(throttle, cfg.Chatbot.MinInterval)
	a.Chat = services.NewChatService(chatRepo, bot, a.EventBus, metrics)

	return a, nil
}

// Close releases the event bus and connections
func (a *App) Close() error {
	var errs []error
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.Postgres.Close())
	return errors.Join(errs...)
}
