package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/longbinlai/maybe/internal/adapters/database/pgsql"
	"github.com/longbinlai/maybe/internal/core/services"
	"github.com/longbinlai/maybe/internal/handlers"
	"github.com/longbinlai/maybe/internal/jobs"
	"github.com/longbinlai/maybe/internal/middleware"
	"github.com/longbinlai/maybe/internal/providers"
	"github.com/longbinlai/maybe/pkg/config"
	"github.com/longbinlai/maybe/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	provider, err := providers.ForName(cfg.RateProvider)
	if err != nil {
		logger.Error("Failed to configure rate provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if provider == nil {
		logger.Warn("No rate provider configured; conversion falls back to stored and curated rates only")
	}

	fallbacks := services.LoadFallbackTable(cfg.FallbackTablePath, logger)
	logger.Info("Fallback rate table loaded", slog.Int("currencies", fallbacks.Len()))

	svcs := services.NewServicesContainer(services.ContainerDeps{
		RateRepo:     pgsql.NewPgxExchangeRateRepository(dbPool),
		BalanceRepo:  pgsql.NewPgxBalanceRepository(dbPool),
		AccountRepo:  pgsql.NewPgxAccountRepository(dbPool),
		CurrencyRepo: pgsql.NewPgxCurrencyRepository(dbPool),
		Provider:     provider,
		Fallbacks:    fallbacks,
	})

	scheduler := jobs.NewRateSyncScheduler(svcs.ExchangeRate, svcs.RateCache, cfg.SupportedCurrencies, logger)
	if err := scheduler.Start(context.Background(), cfg.SyncCronSchedule); err != nil {
		logger.Error("Failed to start rate sync scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer scheduler.Stop()

	if cfg.SyncOnStartup {
		// Useful after downtime: the next cron tick may be hours away.
		scheduler.RunNow(context.Background())
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, svcs)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies pending schema migrations over a short-lived
// database/sql connection using the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
