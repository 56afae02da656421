package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/salespulse/backend/internal/ai"
	"github.com/salespulse/backend/internal/analytics"
	"github.com/salespulse/backend/internal/config"
	"github.com/salespulse/backend/internal/http/handlers"
	"github.com/salespulse/backend/internal/http/middleware"
	"github.com/salespulse/backend/internal/kvstore"
	"github.com/salespulse/backend/internal/store"

	_ "github.com/salespulse/backend/docs"
)

func Router(cfg config.Config, st *store.Store, assistant ai.Assistant, cache kvstore.Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:       st,
		Engine:      analytics.NewEngine(),
		Assistant:   assistant,
		Cache:       cache,
		Validator:   validator.New(),
		Logger:      logger,
		AdminKey:    cfg.AdminKey,
		TrendMonths: cfg.TrendMonths,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/datasets", h.DatasetsList)
		api.GET("/datasets/:id", h.DatasetDetails)
		api.GET("/datasets/:id/regions", h.Regions)
		api.GET("/datasets/:id/agents", h.Agents)
		api.GET("/datasets/:id/segments", h.Segments)
		api.GET("/datasets/:id/trends", h.Trends)
		api.GET("/datasets/:id/timing", h.Timing)
		api.GET("/datasets/:id/recommendations", h.Recommendations)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
		admin.DELETE("/datasets/:id", h.DatasetDelete)
		admin.POST("/datasets/:id/agenda", h.Agenda)
		admin.POST("/datasets/:id/narrative", h.Narrative)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
