package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper removes finished jobs older than a retention window
type Sweeper interface {
	CleanupOldJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Service periodically sweeps expired jobs and their artifacts
type Service struct {
	sweeper         Sweeper
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
	done            chan struct{}
	log             zerolog.Logger
}

// NewService creates a new cleanup service
func NewService(sweeper Sweeper, maxAge, cleanupInterval time.Duration, log zerolog.Logger) *Service {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &Service{
		sweeper:         sweeper,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		log:             log.With().Str("component", "cleanup").Logger(),
	}
}

// Start runs an initial sweep and then sweeps on every interval until Stop
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	// Run initial cleanup
	s.cleanup(ctx)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup(ctx)
			case <-ctx.Done():
				s.log.Info().Msg("cleanup service stopped")
				return
			}
		}
	}()

	s.log.Info().Dur("interval", s.cleanupInterval).Dur("max_age", s.maxAge).Msg("cleanup service started")
}

// Stop stops the cleanup service and waits for the loop to exit
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}
}

// cleanup removes expired jobs
func (s *Service) cleanup(ctx context.Context) {
	removed, err := s.sweeper.CleanupOldJobs(ctx, s.maxAge)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup failed")
		return
	}
	if removed > 0 {
		s.log.Debug().Int64("removed", removed).Msg("removed expired jobs")
	}
}
