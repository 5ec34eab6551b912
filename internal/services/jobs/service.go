package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/killallgit/reelgen/internal/models"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

const (
	// DefaultFailMessage is recorded for jobs that hit the fail keyword
	DefaultFailMessage = "image provider quota exceeded"

	// activeBatchSize caps how many jobs one worker tick advances
	activeBatchSize = 100
)

type service struct {
	repo      Repository
	artifacts ArtifactStore
	observer  Observer
	log       zerolog.Logger

	failKeyword string
	failMessage string
}

// NewService creates the job service
func NewService(repo Repository, log zerolog.Logger, opts ...Option) Service {
	s := &service{
		repo:        repo,
		log:         log.With().Str("component", "jobs").Logger(),
		failMessage: DefaultFailMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateJob(ctx context.Context, req models.GenerationRequest) (*models.StoredJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &models.StoredJob{
		ID:       uuid.NewString(),
		Status:   models.JobStatusPending,
		Progress: 0,
		Message:  queuedMessage,
		Request:  models.StoredRequest(req),
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	if s.observer != nil {
		s.observer.JobCreated()
	}
	s.log.Debug().Str("job_id", job.ID).Int("duration", req.DurationSeconds).Msg("job enqueued")

	return job, nil
}

func (s *service) GetJob(ctx context.Context, jobID string) (*models.StoredJob, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, apperrors.NotFound("job", jobID)
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

// AdvanceActiveJobs moves every non-terminal job one stage forward
func (s *service) AdvanceActiveJobs(ctx context.Context) (int, error) {
	active, err := s.repo.GetActiveJobs(ctx, activeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing active jobs: %w", err)
	}

	advanced := 0
	for _, job := range active {
		if err := ctx.Err(); err != nil {
			return advanced, err
		}
		if err := s.advance(ctx, job); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to advance job")
			continue
		}
		advanced++
	}
	return advanced, nil
}

func (s *service) AdvanceJob(ctx context.Context, jobID string) (*models.StoredJob, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.advance(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// advance applies the next pipeline stage to job and persists it
func (s *service) advance(ctx context.Context, job *models.StoredJob) error {
	if job.IsTerminal() {
		return nil
	}
	if job.Step >= len(pipeline) {
		return fmt.Errorf("job %s is past the last stage", job.ID)
	}

	from := job.Status
	next := pipeline[job.Step]

	if next.failPoint && s.shouldFail(job) {
		now := time.Now().UTC()
		job.Status = models.JobStatusFailed
		job.Progress = 0
		job.Message = failedMessage
		job.Error = s.failMessage
		job.CompletedAt = &now
	} else {
		job.Status = next.status
		job.Progress = next.progress
		job.Message = next.message
		job.Step++

		if next.withScript {
			job.Script = synthesizeScript(models.GenerationRequest(job.Request))
		}
		if next.status == models.JobStatusCompleted {
			if err := s.finish(ctx, job); err != nil {
				return err
			}
		}
	}

	if err := s.repo.SaveJob(ctx, job); err != nil {
		return err
	}

	if from != job.Status {
		if s.observer != nil {
			s.observer.JobTransitioned(from, job.Status)
		}
		s.log.Debug().
			Str("job_id", job.ID).
			Str("from", string(from)).
			Str("to", string(job.Status)).
			Int("progress", job.Progress).
			Msg("job transitioned")
	}
	return nil
}

func (s *service) finish(ctx context.Context, job *models.StoredJob) error {
	if s.artifacts != nil {
		if _, err := s.artifacts.Save(ctx, job); err != nil {
			return fmt.Errorf("rendering artifact: %w", err)
		}
	}
	now := time.Now().UTC()
	job.DownloadURL = "/api/download/" + job.ID
	job.CompletedAt = &now
	return nil
}

func (s *service) shouldFail(job *models.StoredJob) bool {
	if s.failKeyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(job.Request.Topic), strings.ToLower(s.failKeyword))
}

func (s *service) DeleteJob(ctx context.Context, jobID string) error {
	if err := s.repo.DeleteJob(ctx, jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return apperrors.NotFound("job", jobID)
		}
		return err
	}

	if s.artifacts != nil {
		if err := s.artifacts.Delete(ctx, jobID); err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to remove artifact")
		}
	}
	s.log.Debug().Str("job_id", jobID).Msg("job deleted")
	return nil
}

// CleanupOldJobs removes finished jobs and their artifacts after olderThan
func (s *service) CleanupOldJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	ids, err := s.repo.DeleteOldJobs(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if s.artifacts != nil {
		for _, id := range ids {
			if err := s.artifacts.Delete(ctx, id); err != nil {
				s.log.Warn().Err(err).Str("job_id", id).Msg("failed to remove artifact")
			}
		}
	}

	if len(ids) > 0 {
		s.log.Info().Int("count", len(ids)).Dur("older_than", olderThan).Msg("cleaned up old jobs")
	}
	return int64(len(ids)), nil
}
