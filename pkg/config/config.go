package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Currency  CurrencyConfig
	Meta      MetaConfig
	WhatsApp  WhatsAppConfig
	Chatbot   ChatbotConfig
	Scheduler SchedulerConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CurrencyConfig holds exchange-rate provider configuration
type CurrencyConfig struct {
	ExchangeRateAPIURL string
	TCMBURL            string
	DefaultSource      string
	RateCacheTTL       time.Duration
	RequestTimeout     time.Duration
}

// MetaConfig holds Meta (Facebook) Graph API configuration
type MetaConfig struct {
	GraphBaseURL string
	FetchLimit   int
}

// WhatsAppConfig holds WhatsApp Cloud API configuration
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
}

// ChatbotConfig holds chatbot throttling configuration
type ChatbotConfig struct {
	MinInterval   time.Duration
	ThrottleStore string
}

// SchedulerConfig holds cron specs for background jobs
type SchedulerConfig struct {
	CurrencySyncSpec  string
	MetaSyncSpec      string
	// RateCacheWarmSpec only runs when Redis is available
	RateCacheWarmSpec string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "medtour_clinic"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Currency: CurrencyConfig{
			ExchangeRateAPIURL: getEnv("EXCHANGERATE_API_URL", "https://api.exchangerate-api.com"),
			TCMBURL:            getEnv("TCMB_URL", "https://www.tcmb.gov.tr"),
			DefaultSource:      getEnv("CURRENCY_API_SOURCE", "exchangerate-api"),
			RateCacheTTL:       getEnvAsDuration("RATE_CACHE_TTL", time.Hour),
			RequestTimeout:     getEnvAsDuration("CURRENCY_API_TIMEOUT", 10*time.Second),
		},
		Meta: MetaConfig{
			GraphBaseURL: getEnv("META_GRAPH_URL", "https://graph.facebook.com"),
			FetchLimit:   getEnvAsInt("META_FETCH_LIMIT", 100),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0"),
		},
		Chatbot: ChatbotConfig{
			MinInterval:   getEnvAsDuration("CHATBOT_MIN_INTERVAL", 30*time.Second),
			ThrottleStore: getEnv("CHATBOT_THROTTLE_STORE", "redis"),
		},
		Scheduler: SchedulerConfig{
			CurrencySyncSpec:  getEnv("CURRENCY_SYNC_CRON", "0 9 * * *"),
			MetaSyncSpec:      getEnv("META_SYNC_CRON", "@every 5m"),
			RateCacheWarmSpec: getEnv("RATE_CACHE_WARM_CRON", "@every 30m"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medtour-clinic"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	switch cfg.Currency.DefaultSource {
	case "exchangerate-api", "tcmb":
	default:
		return nil, fmt.Errorf("unsupported CURRENCY_API_SOURCE %q", cfg.Currency.DefaultSource)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WhatsAppEnabled reports whether both WhatsApp credentials are set
func (c *WhatsAppConfig) WhatsAppEnabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
