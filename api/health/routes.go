package health

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/reelgen/api/types"
)

// RegisterRoutes registers health check routes
func RegisterRoutes(router gin.IRoutes, deps *types.Dependencies) {
	router.GET("/health", Get(deps))
}
