// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/domain/documents/manifest"
	"transdoc/internal/domain/numbering"
	"transdoc/internal/infrastructure/http/v1/handlers"
	"transdoc/internal/infrastructure/http/v1/middleware"
	"transdoc/internal/infrastructure/metrics"
	"transdoc/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// DB backs the readiness probe
	DB      handlers.Pinger
	Version string

	Logger  *logger.Logger
	Metrics *metrics.Metrics

	Countries *country.Registry
	Carriers  carrier.Repository
	Licenses  carrier.LicenseRepository

	Numbers   *numbering.Service
	CRTs      *crt.Service
	Manifests *manifest.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Operator())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	base := handlers.NewBaseHandler()

	registerReferenceRoutes(v1, base, cfg)
	registerNumberRoutes(v1, base, cfg)
	registerDocumentRoutes(v1, base, cfg)

	return router
}

func registerReferenceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewReferenceHandler(base, cfg.Countries, cfg.Carriers, cfg.Licenses)

	rg.GET("/countries", h.Countries)
	rg.GET("/carriers", h.Carriers)
	rg.GET("/carriers/:id/licenses", h.CarrierLicenses)
	rg.GET("/licenses/validity", h.LicenseValidity)
}

func registerNumberRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewNumbersHandler(base, cfg.Numbers)

	rg.POST("/numbers", h.Allocate)

	sequences := rg.Group("/sequences/:kind/:carrierId")
	{
		sequences.GET("", h.GetSequence)
		sequences.POST("/rebase", h.Rebase)
	}
}

// registerDocumentRoutes registers the issuer endpoints. Either issuer may be
// absent, e.g. in deployments that only hand out raw numbers.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.CRTs != nil {
		h := handlers.NewCRTHandler(base, cfg.CRTs)
		rg.POST("/crts", h.Issue)
		rg.GET("/crts/:id", h.Get)
		rg.GET("/carriers/:id/crts", h.ListByCarrier)
	}

	if cfg.Manifests != nil {
		h := handlers.NewManifestHandler(base, cfg.Manifests)
		manifests := rg.Group("/manifests")
		{
			manifests.POST("/loaded", h.IssueLoaded)
			manifests.POST("/empty-leg", h.IssueEmptyLeg)
			manifests.GET("/:id", h.Get)
			manifests.GET("/:id/crts", h.ListCRTs)
			manifests.POST("/:id/crts", h.LinkCRTs)
		}
	}
}
