package server

import (
	"shopcart-service/internal/handler"
	mid "shopcart-service/internal/middleware"
	"shopcart-service/internal/store"
	"shopcart-service/pkg/config"
	"shopcart-service/pkg/logger"
	"shopcart-service/pkg/metrics"
	"shopcart-service/prometheus"
	"shopcart-service/web"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	promclient "github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// New builds the echo instance serving the shopcart API over db. Metrics are
// registered on reg and exposed from it at /metrics.
func New(cfg *config.Config, db *gorm.DB, reg *promclient.Registry) *echo.Echo {
	httpMetrics := metrics.NewHTTPMetrics(cfg.ServiceName, reg)
	itemMetrics := prometheus.InitMetrics(cfg.Metrics.Prefix, reg)

	itemStore := store.NewItemStore(db, logger.GetLogger(), itemMetrics)
	items := handler.NewItemHandler(itemStore, itemMetrics)
	health := &handler.HealthHandler{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.RequestLoggerMiddleware)
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// Landing page, docs and assets
	e.GET("/", handler.Index)
	e.GET("/shopcarts", handler.Index)
	e.GET("/v1/spec", handler.APISpec)
	e.StaticFS("/static", web.StaticFS())

	// Operations
	e.GET("/health", health.Check)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))

	// Item API
	items.Register(e.Group("/shopcarts"))

	return e
}
