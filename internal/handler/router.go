package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/middleware"
)

// RouterConfig collects everything the HTTP surface needs.
type RouterConfig struct {
	Logger      *zap.Logger
	Redirects   *RedirectHandler
	Links       *LinkHandler
	Clicks      *ClickHandler
	Analytics   *AnalyticsHandler
	Health      *HealthHandler
	Auth        *middleware.APIKeyAuth
	RateLimiter *middleware.RateLimiter
	// RedirectLimiter guards GET /:shortCode. nil leaves redirects unlimited.
	RedirectLimiter *middleware.RateLimiter
	CORS            middleware.CORSConfig
}

// NewRouter builds the gin engine with all routes.
//
// Order matters! Middleware runs in order of addition:
// Recovery → Metrics → Logging → Security headers → CORS → route
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORS))

	// Health and metrics (no auth required)
	router.GET("/health", cfg.Health.Health)
	router.GET("/ready", cfg.Health.Ready)
	router.GET("/live", cfg.Health.Live)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Redirect (no auth)
	redirect := []gin.HandlerFunc{cfg.Redirects.Redirect}
	if cfg.RedirectLimiter != nil {
		redirect = append([]gin.HandlerFunc{cfg.RedirectLimiter.Middleware()}, redirect...)
	}
	router.GET("/:shortCode", redirect...)

	// Anonymous callers may create and look up links.
	public := router.Group("/api", cfg.Auth.OptionalKey(), cfg.RateLimiter.Middleware())
	{
		public.POST("/links", cfg.Links.Create)
		public.GET("/links/lookup", cfg.Links.Lookup)
	}

	// Everything owner-scoped needs a key.
	api := router.Group("/api", cfg.Auth.RequireKey(), cfg.RateLimiter.Middleware())
	{
		api.GET("/links", cfg.Links.List)
		api.GET("/links/:id", cfg.Links.Get)
		api.PATCH("/links/:id", cfg.Links.Update)
		api.DELETE("/links/:id", cfg.Links.Delete)
		api.GET("/links/:id/qr", cfg.Links.QRCode)
		api.GET("/links/:id/analytics", cfg.Analytics.Get)
		api.POST("/clicks", cfg.Clicks.Record)
	}

	return router
}
