package main

import (
	"context"

	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/infrastructure/config"
	"github.com/ceramica/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

const driftCheckJob = "inventory-drift-check"

// backgroundJobs owns the scheduler and its trigger
type backgroundJobs struct {
	scheduler *scheduler.Scheduler
	trigger   *scheduler.IntervalTrigger
}

// startJobs registers the periodic jobs and starts running them. It
// returns nil when the scheduler is disabled.
func startJobs(ctx context.Context, cfg config.SchedulerConfig, produccion *inventoryapp.ProduccionService, log *zap.Logger) (*backgroundJobs, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	s, err := scheduler.NewScheduler(scheduler.Config{
		Workers:       cfg.Workers,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, log.Named("scheduler"))
	if err != nil {
		return nil, err
	}

	fix := cfg.ReconcileFix
	if err := s.Register(driftCheckJob, func(ctx context.Context) error {
		drifts, err := produccion.Reconcile(ctx, fix, nil)
		if err != nil {
			return err
		}
		for _, d := range drifts {
			log.Warn("Apartados out of balance",
				zap.String("inventory_id", d.InventoryID.String()),
				zap.String("producto", d.Producto),
				zap.Int("apartados", d.Apartados),
				zap.Int("allocated", d.Allocated),
				zap.Bool("fixed", d.Fixed),
				zap.String("reason", d.Reason),
			)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	s.OnFinish(func(j scheduler.Job) {
		if j.Status == scheduler.JobStatusFailed {
			log.Error("Background job gave up", zap.String("job", j.Name), zap.String("error", j.Error))
		}
	})

	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	trigger := scheduler.NewIntervalTrigger(s, log.Named("scheduler")).
		Every(driftCheckJob, cfg.ReconcileInterval, false)
	if err := trigger.Start(ctx); err != nil {
		_ = s.Stop(ctx)
		return nil, err
	}
	return &backgroundJobs{scheduler: s, trigger: trigger}, nil
}

// Stop stops the trigger, then drains the scheduler
func (b *backgroundJobs) Stop(ctx context.Context) error {
	if b == nil {
		return nil
	}
	if err := b.trigger.Stop(ctx); err != nil {
		return err
	}
	return b.scheduler.Stop(ctx)
}
