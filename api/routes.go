package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/reelgen/api/health"
	"github.com/killallgit/reelgen/api/reels"
	"github.com/killallgit/reelgen/api/types"
	"github.com/killallgit/reelgen/api/version"
	_ "github.com/killallgit/reelgen/docs/swagger"
)

// RateLimits configures per-client limits. Zero RPS disables limiting.
type RateLimits struct {
	RPS   int
	Burst int
}

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limits RateLimits, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Register public routes (no rate limiting)
	version.RegisterRoutes(engine, deps)
	health.RegisterRoutes(engine, deps)

	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	apiGroup := engine.Group("/api")
	health.RegisterRoutes(apiGroup, deps)

	if deps.JobService == nil {
		return nil
	}

	// Polling clients hit status every couple of seconds, so only job
	// creation is limited
	submitLimit := PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, limits.RPS, limits.Burst)
	reels.RegisterRoutes(apiGroup, deps, submitLimit)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Status:  types.StatusError,
			Detail:  "The requested endpoint was not found",
			Details: gin.H{"path": c.Request.URL.Path},
		})
	}
}
