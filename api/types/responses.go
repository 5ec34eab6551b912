package types

import "github.com/killallgit/reelgen/internal/models"

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse is the body of every non-2xx response. Clients read "detail".
type ErrorResponse struct {
	Status  string `json:"status"`
	Detail  string `json:"detail"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse acknowledges an operation without returning data
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version"`
	APIs     models.APIAvailability `json:"apis"`
	Database map[string]any         `json:"database"`
}
