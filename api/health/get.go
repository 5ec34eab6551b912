package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/reelgen/api/types"
	"github.com/killallgit/reelgen/internal/models"
)

const defaultVersion = "1.0.0"

// Get handles health check requests
// @Summary      Backend health
// @Description  Reports the service version, which upstream providers are configured and the job store state
// @Tags         health
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Failure      503 {object} types.HealthResponse "Job store unreachable"
// @Router       /api/health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:  types.StatusOK,
			Version: defaultVersion,
		}

		if deps != nil {
			if deps.Version != "" {
				response.Version = deps.Version
			}
			response.APIs = availability(deps.APIs)
		}

		code := http.StatusOK
		response.Database = getDatabaseStatus(deps)
		if response.Database["status"] == "unhealthy" {
			response.Status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}

func availability(apis map[string]bool) models.APIAvailability {
	return models.APIAvailability{
		OpenAI:     apis["openai"],
		ElevenLabs: apis["elevenlabs"],
		Stability:  apis["stability"],
		Pexels:     apis["pexels"],
	}
}
