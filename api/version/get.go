package version

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/reelgen/api/types"
)

// Get handles version requests
func Get(deps *types.Dependencies) gin.HandlerFunc {
	version := "1.0.0"
	if deps != nil && deps.Version != "" {
		version = deps.Version
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Reel Generator API",
			"version":     version,
			"description": "Simulated backend for asynchronous short-video generation",
			"status":      "running",
		})
	}
}
