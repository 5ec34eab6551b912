package reels

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/reelgen/api/types"
)

// RegisterRoutes registers the generation endpoints. submitLimit guards job
// creation and may be nil.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, submitLimit gin.HandlerFunc) {
	if submitLimit != nil {
		router.POST("/generate", submitLimit, Generate(deps))
	} else {
		router.POST("/generate", Generate(deps))
	}

	router.GET("/status/:job_id", Status(deps))
	router.GET("/download/:job_id", Download(deps))
	router.GET("/preview/:job_id", Preview(deps))
	router.DELETE("/job/:job_id", Delete(deps))
}
