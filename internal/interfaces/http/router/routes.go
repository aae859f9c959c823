package router

import (
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds the HTTP engine settings
type EngineConfig struct {
	TrustedProxies []string
	MaxBodyBytes   int64
	Tracing        middleware.TracingConfig
}

// NewEngine creates a gin engine with the service's middleware chain and
// the unversioned health endpoint.
func NewEngine(cfg EngineConfig, log *zap.Logger, health *handler.HealthHandler) (*gin.Engine, error) {
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
	)
	engine.Use(middleware.Tracing(cfg.Tracing)...)
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	engine.GET("/health", health.Health)
	return engine, nil
}

// ListingRoutes returns the route groups served by the listing handler
func ListingRoutes(h *handler.ListingHandler) []RouteRegistrar {
	listings := NewDomainGroup("listings", "/listings")
	listings.GET("/:model/:id/classification", h.GetClassification).
		GET("/:model/:id/create-payload", h.GetCreatePayload).
		POST("/:model/:id/sync", h.EnqueueSync)

	sync := NewDomainGroup("sync", "/sync")
	sync.GET("/stats", h.GetStats).
		POST("/run", h.RunSync)

	return []RouteRegistrar{listings, sync}
}
