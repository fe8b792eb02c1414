package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL            string
	Port                   string
	IsProduction           bool
	CORSAllowedOrigins     []string
	SyncRateLimitPerMinute int64
	RateProvider           string
	FallbackTablePath      string
	SupportedCurrencies    []string
	SyncCronSchedule       string
	SyncOnStartup          bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SYNC_RATE_LIMIT_PER_MINUTE", int64(5))
	viper.SetDefault("RATE_PROVIDER", "ecb")
	viper.SetDefault("FALLBACK_TABLE_PATH", "config/currency_fallbacks.yaml")
	viper.SetDefault("SUPPORTED_CURRENCIES", "USD,EUR,GBP,JPY,CNY,INR")
	// Daily, shortly after ECB publishes reference rates.
	viper.SetDefault("SYNC_CRON_SCHEDULE", "0 17 * * *")
	viper.SetDefault("SYNC_ON_STARTUP", false)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.SyncRateLimitPerMinute = viper.GetInt64("SYNC_RATE_LIMIT_PER_MINUTE")
	if cfg.SyncRateLimitPerMinute <= 0 {
		log.Printf("Warning: Invalid value for SYNC_RATE_LIMIT_PER_MINUTE (%d). Defaulting to 5.\n", cfg.SyncRateLimitPerMinute)
		cfg.SyncRateLimitPerMinute = 5
	}

	cfg.RateProvider = viper.GetString("RATE_PROVIDER")
	cfg.FallbackTablePath = viper.GetString("FALLBACK_TABLE_PATH")
	cfg.SupportedCurrencies = splitList(strings.ToUpper(viper.GetString("SUPPORTED_CURRENCIES")))
	cfg.SyncCronSchedule = viper.GetString("SYNC_CRON_SCHEDULE")
	cfg.SyncOnStartup = viper.GetBool("SYNC_ON_STARTUP")

	return cfg, nil
}

// splitList parses a comma-separated environment value into its non-empty,
// trimmed elements.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
