package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lumen-ops/alertgate-go/internal/api/handlers"
	"github.com/lumen-ops/alertgate-go/internal/api/middleware"
	"github.com/lumen-ops/alertgate-go/internal/config"
	"github.com/lumen-ops/alertgate-go/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, engine handlers.Evaluator, repos *database.Repositories, registry *prometheus.Registry, logger *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	h := handlers.NewHandlers(cfg, engine, repos.Alert, repos.Audit, logger)

	router.GET("/health", h.Health)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	api := router.Group("/api/v1")
	{
		supp := api.Group("/suppression")
		{
			supp.POST("/evaluate", h.Evaluate)
			supp.GET("/stats", h.Stats)
			supp.GET("/audit", h.RecentAudit)
		}
	}

	return router
}
