package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// maxRequestBody caps inflated gzip request bodies.
const maxRequestBody = 1 << 20

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.StorefrontFacade
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	logger := p.Logger.Named("http")

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Instrument(p.Metrics))
	engine.Use(middleware.Locale())
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(p.Facade, logger)
	voucherHandler := handlers.NewVoucherHandler(p.Facade, logger)
	healthHandler := handlers.NewHealthHandler(p.Facade, logger)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	api.Use(middleware.AuthRequired(p.Facade))
	api.POST("/orders", orderHandler.Place)
	api.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	api.POST("/vouchers/validate", voucherHandler.Validate)
	api.POST("/vouchers/apply", voucherHandler.Apply)

	return engine
}
