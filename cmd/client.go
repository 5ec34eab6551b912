package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/killallgit/reelgen/internal/services/reelapi"
	"github.com/killallgit/reelgen/pkg/config"
)

// newClient creates the backend client for a command
func newClient(cmd *cobra.Command, cfg *config.Config, log *zerolog.Logger) *reelapi.Client {
	return reelapi.NewClient(reelapi.Config{
		BaseURL:           baseURL(cmd, cfg),
		Timeout:           cfg.API.Timeout,
		UserAgent:         cfg.API.UserAgent,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Logger:            log,
	})
}
