package polling

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/killallgit/reelgen/internal/models"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// DefaultInterval is the cadence between status fetches
const DefaultInterval = 2 * time.Second

// Fetcher reads the current snapshot of a job
type Fetcher interface {
	FetchStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error)
}

// UpdateFunc receives every snapshot the poller observes, terminal ones included
type UpdateFunc func(snap models.JobSnapshot)

// Poller repeatedly fetches a job's status until it reaches a terminal state
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   zerolog.Logger
}

// NewPoller creates a poller. A non-positive interval uses DefaultInterval.
func NewPoller(fetcher Fetcher, interval time.Duration, logger *zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "poller").Logger()
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		logger:   l,
	}
}

// Interval returns the configured cadence
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Poll blocks until the job completes, fails, a fetch errors or ctx ends
func (p *Poller) Poll(ctx context.Context, jobID string, onUpdate UpdateFunc) (*models.JobSnapshot, error) {
	task := p.Start(ctx, jobID, onUpdate)
	defer task.Cancel()
	return task.Wait()
}

// Start begins polling in the background and returns a handle to the run
func (p *Poller) Start(ctx context.Context, jobID string, onUpdate UpdateFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)
		defer cancel()
		task.result, task.err = p.run(ctx, task, jobID, onUpdate)
	}()

	return task
}

// run is the polling loop. Only one fetch is ever in flight.
func (p *Poller) run(ctx context.Context, task *Task, jobID string, onUpdate UpdateFunc) (*models.JobSnapshot, error) {
	log := p.logger.With().Str("job_id", jobID).Logger()
	log.Debug().Dur("interval", p.interval).Msg("polling started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("polling cancelled")
			return nil, apperrors.Cancelled("status polling", ctx.Err())
		case <-ticker.C:
		}

		snap, err := p.fetcher.FetchStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperrors.Cancelled("status polling", ctx.Err())
			}
			log.Warn().Err(err).Msg("status fetch failed, polling stopped")
			return nil, err
		}

		if !task.deliver(*snap, onUpdate) {
			return nil, apperrors.Cancelled("status polling", context.Canceled)
		}

		switch snap.Status {
		case models.JobStatusCompleted:
			log.Debug().Msg("job completed")
			return snap, nil
		case models.JobStatusFailed:
			log.Debug().Str("error", snap.ErrorText()).Msg("job failed")
			return snap, apperrors.JobFailure(jobID, snap.ErrorText())
		}
	}
}

// Task is one running poll
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	// mu serializes callbacks against Cancel
	mu        sync.Mutex
	cancelled bool

	result *models.JobSnapshot
	err    error
}

// Cancel stops the poll. Once Cancel returns no further callback runs.
// It must not be called from inside the update callback.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.cancel()
}

// Done is closed when the poll has stopped
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the poll stops and returns its outcome.
// A failed job returns its final snapshot together with the failure.
func (t *Task) Wait() (*models.JobSnapshot, error) {
	<-t.done
	return t.result, t.err
}

func (t *Task) deliver(snap models.JobSnapshot, onUpdate UpdateFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled {
		return false
	}
	if onUpdate != nil {
		onUpdate(snap)
	}
	return true
}
