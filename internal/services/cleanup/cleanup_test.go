package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/killallgit/reelgen/pkg/logging"
)

type fakeSweeper struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
}

func (f *fakeSweeper) CleanupOldJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.maxAge = olderThan
	return 1, nil
}

func (f *fakeSweeper) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestService_SweepsImmediatelyAndPeriodically(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc := NewService(sweeper, 24*time.Hour, 5*time.Millisecond, logging.Discard())

	svc.Start(context.Background())
	assert.GreaterOrEqual(t, sweeper.Calls(), 1, "initial sweep runs synchronously")

	assert.Eventually(t, func() bool { return sweeper.Calls() >= 3 }, time.Second, time.Millisecond)
	svc.Stop()

	stopped := sweeper.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.Calls())
	assert.Equal(t, 24*time.Hour, sweeper.maxAge)

	// Stop twice is harmless
	svc.Stop()
}
