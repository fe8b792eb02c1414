package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/longbinlai/maybe/internal/core/services"
	"github.com/longbinlai/maybe/internal/middleware"
	"github.com/longbinlai/maybe/pkg/config"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svcs *services.ServicesContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	setupAPIV1Routes(r, cfg, svcs)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, svcs *services.ServicesContainer) {
	v1 := r.Group("/api/v1")

	// The sync endpoint fans out to the upstream provider, so it gets its
	// own rate limit.
	syncLimiter := limiter.New(memory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.SyncRateLimitPerMinute,
	})

	registerCurrencyRoutes(v1, svcs.Currency)
	registerExchangeRateRoutes(v1, cfg, svcs.ExchangeRate, middleware.RateLimit(syncLimiter))
	registerBalanceSeriesRoutes(v1, svcs.BalanceSeries)
}
