package jobs

import (
	"context"
	"time"

	"github.com/killallgit/reelgen/internal/models"
)

// Service defines the simulated backend's job lifecycle
type Service interface {
	// Enqueue operations
	CreateJob(ctx context.Context, req models.GenerationRequest) (*models.StoredJob, error)

	// Status and retrieval
	GetJob(ctx context.Context, jobID string) (*models.StoredJob, error)

	// Worker operations
	AdvanceActiveJobs(ctx context.Context) (int, error)
	AdvanceJob(ctx context.Context, jobID string) (*models.StoredJob, error)

	// Maintenance
	DeleteJob(ctx context.Context, jobID string) error
	CleanupOldJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Observer is notified about job transitions, used for metrics
type Observer interface {
	JobCreated()
	JobTransitioned(from, to models.JobStatus)
}

// Option configures the job service
type Option func(*service)

// WithFailKeyword makes topics containing keyword fail at the image stage with message
func WithFailKeyword(keyword, message string) Option {
	return func(s *service) {
		s.failKeyword = keyword
		if message != "" {
			s.failMessage = message
		}
	}
}

// WithObserver registers a transition observer
func WithObserver(o Observer) Option {
	return func(s *service) {
		s.observer = o
	}
}

// WithArtifacts sets where finished reels are rendered
func WithArtifacts(store ArtifactStore) Option {
	return func(s *service) {
		s.artifacts = store
	}
}
