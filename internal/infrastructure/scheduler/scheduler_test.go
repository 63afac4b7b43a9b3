package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     8,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
	}
}

// finished collects jobs passed to OnFinish
type finished struct {
	mu   sync.Mutex
	jobs []Job
	ch   chan Job
}

func collect(s *Scheduler) *finished {
	f := &finished{ch: make(chan Job, 16)}
	s.OnFinish(func(j Job) {
		f.mu.Lock()
		f.jobs = append(f.jobs, j)
		f.mu.Unlock()
		f.ch <- j
	})
	return f
}

func (f *finished) wait(t *testing.T) Job {
	t.Helper()
	select {
	case j := <-f.ch:
		return j
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return Job{}
	}
}

func startScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler(Config{Workers: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewScheduler(Config{Workers: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().QueueSize, s.config.QueueSize)
	assert.Equal(t, DefaultConfig().JobTimeout, s.config.JobTimeout)
}

func TestScheduler_Register(t *testing.T) {
	s, err := NewScheduler(testConfig(), nil)
	require.NoError(t, err)

	noop := func(context.Context) error { return nil }
	tests := []struct {
		name    string
		job     string
		fn      JobFunc
		wantErr bool
	}{
		{"registers", "drift-check", noop, false},
		{"rejects duplicates", "drift-check", noop, true},
		{"rejects empty name", "", noop, true},
		{"rejects nil function", "other", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Register(tt.job, tt.fn)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduler_Submit(t *testing.T) {
	t.Run("runs the registered function", func(t *testing.T) {
		s := startScheduler(t, testConfig())
		f := collect(s)
		var calls atomic.Int32
		require.NoError(t, s.Register("count", func(context.Context) error {
			calls.Add(1)
			return nil
		}))

		job, err := s.Submit("count")
		require.NoError(t, err)

		done := f.wait(t)
		assert.Equal(t, JobStatusSuccess, done.Status)
		assert.Equal(t, job.ID, done.ID)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unknown job", func(t *testing.T) {
		s := startScheduler(t, testConfig())
		_, err := s.Submit("missing")
		assert.ErrorIs(t, err, ErrUnknownJob)
	})

	t.Run("not running", func(t *testing.T) {
		s, err := NewScheduler(testConfig(), nil)
		require.NoError(t, err)
		require.NoError(t, s.Register("x", func(context.Context) error { return nil }))
		_, err = s.Submit("x")
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("queue full", func(t *testing.T) {
		cfg := testConfig()
		cfg.Workers = 1
		cfg.QueueSize = 1
		s := startScheduler(t, cfg)

		release := make(chan struct{})
		started := make(chan struct{}, 1)
		require.NoError(t, s.Register("block", func(ctx context.Context) error {
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}))
		defer close(release)

		_, err := s.Submit("block")
		require.NoError(t, err)
		<-started
		_, err = s.Submit("block")
		require.NoError(t, err, "one job fits in the queue")
		_, err = s.Submit("block")
		assert.ErrorIs(t, err, ErrJobQueueFull)
	})
}

func TestScheduler_Retries(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		s := startScheduler(t, testConfig())
		f := collect(s)
		var calls atomic.Int32
		require.NoError(t, s.Register("flaky", func(context.Context) error {
			if calls.Add(1) < 2 {
				return errors.New("database unavailable")
			}
			return nil
		}))

		_, err := s.Submit("flaky")
		require.NoError(t, err)

		done := f.wait(t)
		assert.Equal(t, JobStatusSuccess, done.Status)
		assert.Equal(t, 1, done.RetryCount)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		s := startScheduler(t, testConfig())
		f := collect(s)
		var calls atomic.Int32
		require.NoError(t, s.Register("broken", func(context.Context) error {
			calls.Add(1)
			return errors.New("always fails")
		}))

		_, err := s.Submit("broken")
		require.NoError(t, err)

		done := f.wait(t)
		assert.Equal(t, JobStatusFailed, done.Status)
		assert.Equal(t, "always fails", done.Error)
		assert.Equal(t, 2, done.RetryCount)
		assert.Equal(t, int32(3), calls.Load(), "first run plus two retries")
	})

	t.Run("panics become failures", func(t *testing.T) {
		cfg := testConfig()
		cfg.RetryAttempts = 0
		s := startScheduler(t, cfg)
		f := collect(s)
		require.NoError(t, s.Register("panics", func(context.Context) error { panic("boom") }))

		_, err := s.Submit("panics")
		require.NoError(t, err)

		done := f.wait(t)
		assert.Equal(t, JobStatusFailed, done.Status)
		assert.Contains(t, done.Error, "boom")
	})
}

func TestScheduler_JobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 20 * time.Millisecond
	cfg.RetryAttempts = 0
	s := startScheduler(t, cfg)
	f := collect(s)
	require.NoError(t, s.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	_, err := s.Submit("slow")
	require.NoError(t, err)

	done := f.wait(t)
	assert.Equal(t, JobStatusFailed, done.Status)
	assert.Contains(t, done.Error, "deadline exceeded")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s, err := NewScheduler(testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestIntervalTrigger(t *testing.T) {
	s := startScheduler(t, testConfig())
	var calls atomic.Int32
	require.NoError(t, s.Register("tick", func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	trigger := NewIntervalTrigger(s, zap.NewNop()).
		Every("tick", 15*time.Millisecond, true).
		Every("ignored", 0, true)
	require.NoError(t, trigger.Start(context.Background()))

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, trigger.Stop(context.Background()))

	stopped := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), stopped+1, "at most one in-flight run after stop")
}

func TestIntervalTrigger_Immediate(t *testing.T) {
	s := startScheduler(t, testConfig())
	f := collect(s)
	require.NoError(t, s.Register("once", func(context.Context) error { return nil }))

	trigger := NewIntervalTrigger(s, nil).Every("once", time.Hour, true)
	require.NoError(t, trigger.Start(context.Background()))
	t.Cleanup(func() { _ = trigger.Stop(context.Background()) })

	assert.Equal(t, "once", f.wait(t).Name)
}
