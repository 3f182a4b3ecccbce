package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"device-inventory-backend/config"
	"device-inventory-backend/internal/model"
	"device-inventory-backend/internal/mw"
	"device-inventory-backend/internal/probe"
	"device-inventory-backend/internal/store"

	_ "device-inventory-backend/docs"
)

// ServiceName is reported by /health and used as the logger's service field.
const ServiceName = "device-inventory-api"

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, p probe.Prober, log *zap.Logger, cfg *config.Config) *gin.Engine {
	r := gin.New()

	handler := NewHandler(s, p, log, Options{
		Service:         ServiceName,
		Version:         cfg.Server.Version,
		StoreConfigured: cfg.StoreConfigured(),
		HealthTimeout:   cfg.Health.StoreTimeout,
	})

	r.Use(
		mw.RequestID(),
		mw.Logger(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
			abortError(c, http.StatusInternalServerError, model.CodeServerError, "Internal server error", "")
		}),
		mw.CORS(cfg.Server.CORSAllowedOrigins),
	)
	if cfg.Server.RateLimitPerSec > 0 {
		r.Use(mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst))
	}

	r.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, model.CodeNotFound, "Not found", "")
	})

	// Read routes are cached only when a TTL is configured; status is
	// always probed live.
	caching := func(c *gin.Context) { c.Next() }
	invalidate := func(c *gin.Context) { c.Next() }
	if cfg.Server.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
		rc := mw.NewResponseCache(cache.New(ttl, 2*ttl), ttl)
		caching = rc.Cache()
		invalidate = rc.Invalidate()
	}
	auth := mw.APIKey(cfg.Server.APIKey)

	r.GET("/health", handler.Health)
	r.GET("/docs-info", handler.DocsInfo)
	r.GET("/docs/*any", Docs())

	devices := r.Group("/devices")
	{
		devices.GET("", caching, handler.ListDevices)
		devices.POST("", auth, invalidate, handler.CreateDevice)
		devices.GET("/:id", caching, handler.GetDevice)
		devices.PUT("/:id", auth, invalidate, handler.UpdateDevice)
		devices.DELETE("/:id", auth, invalidate, handler.DeleteDevice)
		devices.GET("/:id/status", handler.GetDeviceStatus)
	}

	return r
}
