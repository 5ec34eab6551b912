package types

import (
	"github.com/killallgit/reelgen/internal/database"
	"github.com/killallgit/reelgen/internal/metrics"
	"github.com/killallgit/reelgen/internal/services/jobs"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB         *database.DB
	JobService jobs.Service
	Artifacts  jobs.ArtifactStore
	Metrics    *metrics.Collector

	// Reported by the health endpoint
	Version string
	APIs    map[string]bool
}
