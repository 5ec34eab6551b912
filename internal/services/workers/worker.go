package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stepper advances every active job by one pipeline stage
type Stepper interface {
	AdvanceActiveJobs(ctx context.Context) (int, error)
}

// Worker represents a background worker that drives simulated jobs forward
type Worker struct {
	id           string
	stepper      Stepper
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	stepInterval time.Duration
	log          zerolog.Logger
}

// NewWorker creates a new worker instance
func NewWorker(id string, stepper Stepper, stepInterval time.Duration, log zerolog.Logger) *Worker {
	if stepInterval <= 0 {
		stepInterval = time.Second
	}
	return &Worker{
		id:           id,
		stepper:      stepper,
		stopChan:     make(chan struct{}),
		stepInterval: stepInterval,
		log:          log.With().Str("worker", id).Logger(),
	}
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker gracefully. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	w.log.Info().Dur("interval", w.stepInterval).Msg("worker starting")
	defer w.log.Info().Msg("worker stopped")

	ticker := time.NewTicker(w.stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			n, err := w.stepper.AdvanceActiveJobs(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("error advancing jobs")
				continue
			}
			if n > 0 {
				w.log.Debug().Int("jobs", n).Msg("advanced jobs")
			}
		}
	}
}
