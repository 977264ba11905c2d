package bitpin

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/veiloq/bitpin-connector/pkg/logging"
)

// maintainer is a repeating background task that keeps a token fresh. One
// instance runs one operation (login or refresh) in a loop: a failed
// attempt cycle is re-entered immediately, a successful one is followed by
// an interval sleep. Failures never propagate past the maintainer; they are
// logged and swallowed.
//
// With the default options an attempt cycle is a single call, so the loop
// reproduces the upstream policy of unbounded zero-delay retries. Setting
// retryAttempts/retryDelay bounds each cycle with fixed-delay retries
// instead.
type maintainer struct {
	name          string
	interval      time.Duration
	retryAttempts uint
	retryDelay    time.Duration
	op            func(ctx context.Context) error
	logger        logging.Logger

	// sleep is replaced in tests to observe interval waits.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func newMaintainer(name string, interval time.Duration, opts *Options, op func(ctx context.Context) error) *maintainer {
	return &maintainer{
		name:          name,
		interval:      interval,
		retryAttempts: opts.MaintainerRetryAttempts,
		retryDelay:    opts.MaintainerRetryDelay,
		op:            op,
		logger:        opts.Logger.WithFields(logging.String("maintainer", name)),
		sleep:         sleepContext,
	}
}

// Start launches the loop. Starting a running maintainer is a no-op.
func (m *maintainer) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx)
}

// Stop cancels the loop and waits for it to exit. Stopping a stopped
// maintainer is a no-op.
func (m *maintainer) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// IsRunning reports whether the loop is active.
func (m *maintainer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *maintainer) run(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(m.done)
	}()

	for {
		err := m.attempt(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.logger.Warn("token maintenance failed, retrying", logging.Error(err))
			continue
		}
		if err := m.sleep(ctx, m.interval); err != nil {
			return
		}
	}
}

// attempt runs one retry cycle of the operation.
func (m *maintainer) attempt(ctx context.Context) error {
	return retry.Do(
		func() error { return m.op(ctx) },
		retry.Attempts(m.retryAttempts),
		retry.Delay(m.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			m.logger.Warn("retrying token maintenance",
				logging.Int("attempt", int(n)),
				logging.Error(err),
			)
		}),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
