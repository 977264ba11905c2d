package bitpin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMaintainer wires a maintainer with an observable sleep: the recorded
// durations are the interval waits, and reaching the first one signals that
// the loop got past its attempt phase.
type testMaintainer struct {
	*maintainer

	mu       sync.Mutex
	sleeps   []time.Duration
	sleeping chan struct{}
}

func newTestMaintainer(opts *Options, interval time.Duration, op func(ctx context.Context) error) *testMaintainer {
	tm := &testMaintainer{
		maintainer: newMaintainer("test", interval, opts.withDefaults(), op),
		sleeping:   make(chan struct{}),
	}
	var once sync.Once
	tm.maintainer.sleep = func(ctx context.Context, d time.Duration) error {
		tm.mu.Lock()
		tm.sleeps = append(tm.sleeps, d)
		tm.mu.Unlock()
		once.Do(func() { close(tm.sleeping) })
		<-ctx.Done()
		return ctx.Err()
	}
	return tm
}

func (tm *testMaintainer) waitForSleep(t *testing.T) {
	t.Helper()
	select {
	case <-tm.sleeping:
	case <-time.After(2 * time.Second):
		t.Fatal("maintainer never reached the interval sleep")
	}
}

func (tm *testMaintainer) recordedSleeps() []time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return append([]time.Duration(nil), tm.sleeps...)
}

func TestMaintainer_FailuresRetryImmediately(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	op := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	tm := newTestMaintainer(&Options{}, time.Hour, op)
	tm.Start()
	tm.waitForSleep(t)
	tm.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls, "two failures then one success")
	// The only recorded sleep is the interval wait after the success; the
	// failed attempts were re-entered without any wait.
	assert.Equal(t, []time.Duration{time.Hour}, tm.recordedSleeps())
	assert.False(t, tm.IsRunning())
}

func TestMaintainer_BoundedRetryCycle(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	op := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	tm := newTestMaintainer(&Options{MaintainerRetryAttempts: 5}, time.Minute, op)
	tm.Start()
	tm.waitForSleep(t)
	tm.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Minute}, tm.recordedSleeps())
}

func TestMaintainer_StartIsIdempotent(t *testing.T) {
	tm := newTestMaintainer(&Options{}, time.Hour, func(ctx context.Context) error { return nil })
	tm.Start()
	tm.Start()
	tm.waitForSleep(t)
	require.True(t, tm.IsRunning())

	tm.Stop()
	tm.Stop()
	assert.False(t, tm.IsRunning())
}

func TestMaintainer_StopUnblocksPersistentFailure(t *testing.T) {
	tm := newTestMaintainer(&Options{}, time.Hour, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
			return errors.New("always failing")
		}
	})
	tm.Start()
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		tm.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while the operation keeps failing")
	}
	assert.False(t, tm.IsRunning())
	assert.Empty(t, tm.recordedSleeps(), "a failing operation never reaches the interval sleep")
}
