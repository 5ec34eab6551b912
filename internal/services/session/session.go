package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/phases"
	"github.com/killallgit/reelgen/internal/services/polling"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

const (
	submittingProgress = 5
	submittedProgress  = 10

	submittingMessage = "Submitting request..."
	submittedMessage  = "Generation started"

	subscriberBuffer = 16
)

// Backend is the part of the reel API a session needs
type Backend interface {
	polling.Fetcher
	Submit(ctx context.Context, req models.GenerationRequest) (*models.SubmitResponse, error)
	PreviewURL(jobID string) string
	DownloadURL(jobID string) string
}

// State is a point in time copy of the session. Empty strings mean "not set".
type State struct {
	Phase                models.Phase
	Progress             int
	Message              string
	Script               *models.ScriptArtifact
	JobID                string
	EstimatedTimeSeconds int
	PreviewURL           string
	DownloadURL          string
	Error                string
}

// Running reports whether an attempt is in flight
func (s State) Running() bool {
	return s.Phase.IsActive()
}

// Session tracks a single reel generation attempt at a time.
// Each Start supersedes the previous attempt; updates from a superseded attempt are dropped.
type Session struct {
	backend Backend
	poller  *polling.Poller
	logger  zerolog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	task       *polling.Task

	subscribers map[int]chan State
	nextSubID   int
}

// New creates an idle session. A non-positive interval uses polling.DefaultInterval.
func New(backend Backend, interval time.Duration, logger *zerolog.Logger) *Session {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "session").Logger()
	}
	return &Session{
		backend:     backend,
		poller:      polling.NewPoller(backend, interval, logger),
		logger:      l,
		state:       idleState(),
		subscribers: make(map[int]chan State),
	}
}

func idleState() State {
	return State{Phase: models.PhaseIdle}
}

// State returns a copy of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving every state change, starting with the
// current state. Slow readers only lose intermediate states, never the latest one.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Start runs one generation attempt to its end and returns the final state.
// Failures never escape as errors; they end in PhaseError with a message.
// If another Start or Reset supersedes this attempt, the state current at
// that point is returned instead.
func (s *Session) Start(ctx context.Context, req models.GenerationRequest) State {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen := s.begin(cancel)
	log := s.logger.With().Uint64("attempt", gen).Logger()

	if strings.TrimSpace(req.Topic) == "" {
		return s.fail(gen, apperrors.ValidationError("topic", "must not be empty"))
	}

	resp, err := s.backend.Submit(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("submission failed")
		return s.fail(gen, s.cancellation(ctx, err))
	}
	log.Info().Str("job_id", resp.JobID).Msg("job submitted, polling status")

	ok := s.apply(gen, func(st *State) {
		st.JobID = resp.JobID
		st.EstimatedTimeSeconds = resp.EstimatedTimeSeconds
		st.Progress = submittedProgress
		st.Message = submittedMessage
	})
	if !ok {
		return s.State()
	}

	task := s.poller.Start(ctx, resp.JobID, func(snap models.JobSnapshot) {
		if snap.Status.IsTerminal() {
			// applied by complete or fail
			return
		}
		s.apply(gen, func(st *State) {
			applySnapshot(st, snap)
		})
	})
	if !s.track(gen, task) {
		task.Cancel()
		return s.State()
	}

	final, err := task.Wait()
	if err != nil {
		log.Warn().Err(err).Str("job_id", resp.JobID).Msg("generation failed")
		return s.fail(gen, s.cancellation(ctx, err))
	}

	return s.complete(gen, resp.JobID, final)
}

// Reset abandons any attempt in flight and returns the session to idle
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	cancel, task := s.cancel, s.task
	s.cancel, s.task = nil, nil
	s.state = idleState()
	s.publishLocked()
	s.mu.Unlock()

	stop(cancel, task)
}

// begin supersedes any running attempt and enters the submitting phase
func (s *Session) begin(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	prevCancel, prevTask := s.cancel, s.task
	s.cancel, s.task = cancel, nil
	s.state = State{
		Phase:    models.PhaseSubmitting,
		Progress: submittingProgress,
		Message:  submittingMessage,
	}
	s.publishLocked()
	s.mu.Unlock()

	// Outside the lock: a superseded callback may be waiting on it
	stop(prevCancel, prevTask)
	return gen
}

// track records the poll task if the attempt is still current
func (s *Session) track(gen uint64, task *polling.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.task = task
	return true
}

// apply mutates state for attempt gen. Returns false if gen was superseded.
func (s *Session) apply(gen uint64, mutate func(st *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	mutate(&s.state)
	s.publishLocked()
	return true
}

// finish applies a terminal mutation and releases the attempt
func (s *Session) finish(gen uint64, mutate func(st *State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return s.state
	}
	mutate(&s.state)
	s.cancel, s.task = nil, nil
	s.publishLocked()
	return s.state
}

func (s *Session) fail(gen uint64, err error) State {
	return s.finish(gen, func(st *State) {
		st.Phase = models.PhaseError
		st.Progress = 0
		st.Error = apperrors.UserMessage(err)
		st.PreviewURL, st.DownloadURL = "", ""
	})
}

func (s *Session) complete(gen uint64, jobID string, final *models.JobSnapshot) State {
	return s.finish(gen, func(st *State) {
		if final != nil {
			applySnapshot(st, *final)
		}
		st.Phase = models.PhaseCompleted
		st.Progress = 100
		st.Error = ""
		st.PreviewURL = s.backend.PreviewURL(jobID)
		st.DownloadURL = s.backend.DownloadURL(jobID)
	})
}

// cancellation replaces err with a cancellation error when the caller gave up
func (s *Session) cancellation(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperrors.Cancelled("generation", ctx.Err())
	}
	return err
}

// publishLocked fans the current state out to subscribers. Caller holds mu.
func (s *Session) publishLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- s.state:
		default:
			// Drop the oldest pending state so the newest always lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.state:
			default:
			}
		}
	}
}

// applySnapshot writes a polled snapshot into st. Terminal phases are left to
// finish so the session never shows completed without URLs.
func applySnapshot(st *State, snap models.JobSnapshot) {
	st.Message = snap.Message
	if snap.Script != nil {
		st.Script = snap.Script
	}
	if snap.Status.IsTerminal() {
		return
	}
	st.Progress = clampProgress(snap.Progress)
	st.Phase = phases.FromStatus(snap.Status)
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func stop(cancel context.CancelFunc, task *polling.Task) {
	if cancel != nil {
		cancel()
	}
	if task != nil {
		task.Cancel()
	}
}
