package reels

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/reelgen/api/types"
	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/jobs"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

const generationStartedMessage = "Generation started. Poll the status with the job_id."

// Generate enqueues a new reel generation job
// @Summary      Start generating a reel
// @Description  Enqueues a generation job and returns its id. Omitted fields take the stock defaults.
// @Tags         reels
// @Accept       json
// @Produce      json
// @Param        request body models.GenerationRequest true "Generation parameters"
// @Success      202 {object} models.SubmitResponse
// @Failure      400 {object} types.ErrorResponse "Malformed body"
// @Failure      422 {object} types.ErrorResponse "Field constraint violated"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/generate [post]
func Generate(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := models.DefaultRequest("")
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := req.Validate(); err != nil {
			c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
				Status: types.StatusError,
				Detail: apperrors.UserMessage(err),
				Code:   string(apperrors.GetCode(err)),
			})
			return
		}

		job, err := deps.JobService.CreateJob(c.Request.Context(), req)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, models.SubmitResponse{
			JobID:                job.ID,
			Message:              generationStartedMessage,
			EstimatedTimeSeconds: req.EstimatedSeconds(),
		})
	}
}

// Status returns the current snapshot of a job
// @Summary      Get job status
// @Tags         reels
// @Produce      json
// @Param        job_id path string true "Job ID"
// @Success      200 {object} models.JobSnapshot
// @Failure      404 {object} types.ErrorResponse "Job not found"
// @Router       /api/status/{job_id} [get]
func Status(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := deps.JobService.GetJob(c.Request.Context(), c.Param("job_id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, job.ToSnapshot())
	}
}

// Download serves the finished artifact as an attachment
// @Summary      Download a finished reel
// @Tags         reels
// @Produce      octet-stream
// @Param        job_id path string true "Job ID"
// @Success      200 {file} file
// @Failure      400 {object} types.ErrorResponse "Job not completed"
// @Failure      404 {object} types.ErrorResponse "Job or file not found"
// @Router       /api/download/{job_id} [get]
func Download(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("job_id")
		job, err := deps.JobService.GetJob(c.Request.Context(), jobID)
		if err != nil {
			types.SendError(c, err)
			return
		}

		if job.Status != models.JobStatusCompleted {
			types.SendBadRequest(c, fmt.Sprintf("video is not ready, current status: %s", job.Status))
			return
		}

		path, ok := artifactPath(deps, jobID)
		if !ok {
			types.SendNotFound(c, "video file not found")
			return
		}

		c.FileAttachment(path, jobs.FileName(jobID))
	}
}

// Preview serves the finished artifact inline
// @Summary      Preview a finished reel
// @Tags         reels
// @Param        job_id path string true "Job ID"
// @Success      200 {file} file
// @Failure      404 {object} types.ErrorResponse "Video not available"
// @Router       /api/preview/{job_id} [get]
func Preview(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("job_id")
		job, err := deps.JobService.GetJob(c.Request.Context(), jobID)
		if err != nil || job.Status != models.JobStatusCompleted {
			types.SendNotFound(c, "video not available")
			return
		}

		path, ok := artifactPath(deps, jobID)
		if !ok {
			types.SendNotFound(c, "file not found")
			return
		}

		c.Header("Accept-Ranges", "bytes")
		c.File(path)
	}
}

// Delete removes a job and its artifact
// @Summary      Delete a job
// @Tags         reels
// @Produce      json
// @Param        job_id path string true "Job ID"
// @Success      200 {object} types.MessageResponse
// @Failure      404 {object} types.ErrorResponse "Job not found"
// @Router       /api/job/{job_id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.JobService.DeleteJob(c.Request.Context(), c.Param("job_id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.MessageResponse{Message: "job deleted"})
	}
}

func artifactPath(deps *types.Dependencies, jobID string) (string, bool) {
	if deps.Artifacts == nil {
		return "", false
	}
	return deps.Artifacts.Path(jobID)
}
