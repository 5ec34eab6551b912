package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/killallgit/reelgen/internal/models"
)

// Repository errors
var (
	ErrJobNotFound = errors.New("job not found")
)

// Repository defines the interface for job persistence
type Repository interface {
	// Create operations
	CreateJob(ctx context.Context, job *models.StoredJob) error

	// Read operations
	GetJob(ctx context.Context, id string) (*models.StoredJob, error)
	GetActiveJobs(ctx context.Context, limit int) ([]*models.StoredJob, error)

	// Update operations
	SaveJob(ctx context.Context, job *models.StoredJob) error

	// Delete operations
	DeleteJob(ctx context.Context, id string) error
	DeleteOldJobs(ctx context.Context, olderThan time.Time) ([]string, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateJob creates a new job
func (r *repository) CreateJob(ctx context.Context, job *models.StoredJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJob retrieves a job by ID
func (r *repository) GetJob(ctx context.Context, id string) (*models.StoredJob, error) {
	var job models.StoredJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return &job, nil
}

// GetActiveJobs retrieves jobs that have not reached a terminal status, oldest first
func (r *repository) GetActiveJobs(ctx context.Context, limit int) ([]*models.StoredJob, error) {
	var jobs []*models.StoredJob
	query := r.db.WithContext(ctx).
		Where("status NOT IN ?", []models.JobStatus{models.JobStatusCompleted, models.JobStatusFailed}).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&jobs).Error
	return jobs, err
}

// SaveJob persists every field of an existing job
func (r *repository) SaveJob(ctx context.Context, job *models.StoredJob) error {
	result := r.db.WithContext(ctx).Save(job)
	if result.Error != nil {
		return fmt.Errorf("saving job: %w", result.Error)
	}
	return nil
}

// DeleteJob removes a job
func (r *repository) DeleteJob(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.StoredJob{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// DeleteOldJobs removes terminal jobs last updated before olderThan and returns their ids
func (r *repository) DeleteOldJobs(ctx context.Context, olderThan time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StoredJob{}).
			Where("status IN ?", []models.JobStatus{models.JobStatusCompleted, models.JobStatusFailed}).
			Where("updated_at < ?", olderThan).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Delete(&models.StoredJob{}, "id IN ?", ids).Error
	})
	if err != nil {
		return nil, fmt.Errorf("deleting old jobs: %w", err)
	}
	return ids, nil
}
