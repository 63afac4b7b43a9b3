package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type schedule struct {
	name      string
	interval  time.Duration
	immediate bool
}

// IntervalTrigger submits registered jobs to a Scheduler on fixed intervals
type IntervalTrigger struct {
	scheduler *Scheduler
	logger    *zap.Logger
	schedules []schedule

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a trigger feeding scheduler
func NewIntervalTrigger(scheduler *Scheduler, logger *zap.Logger) *IntervalTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalTrigger{scheduler: scheduler, logger: logger}
}

// Every submits name each interval. With immediate the first run is
// submitted on Start instead of after one interval.
func (t *IntervalTrigger) Every(name string, interval time.Duration, immediate bool) *IntervalTrigger {
	t.schedules = append(t.schedules, schedule{name: name, interval: interval, immediate: immediate})
	return t
}

// Start starts one loop per schedule
func (t *IntervalTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	for _, sc := range t.schedules {
		if sc.interval <= 0 {
			t.logger.Warn("Skipping job with non-positive interval", zap.String("job", sc.name))
			continue
		}
		t.wg.Add(1)
		go t.runLoop(ctx, sc)
		t.logger.Info("Job scheduled",
			zap.String("job", sc.name),
			zap.Duration("interval", sc.interval),
		)
	}
	return nil
}

// Stop stops the loops
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context, sc schedule) {
	defer t.wg.Done()

	if sc.immediate {
		t.submit(sc.name)
	}

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.submit(sc.name)
		}
	}
}

func (t *IntervalTrigger) submit(name string) {
	if _, err := t.scheduler.Submit(name); err != nil {
		if errors.Is(err, ErrSchedulerNotRunning) {
			return
		}
		t.logger.Warn("Failed to submit scheduled job", zap.String("job", name), zap.Error(err))
	}
}
