// Package scheduler runs the periodic pipeline jobs: the ingestion sweep,
// notification dispatch, and summary generation.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"pulse/config"
	"pulse/internal/delivery"
	"pulse/internal/domain/entity"
	"pulse/internal/domain/lifecycle"
	"pulse/internal/usecase"
	"pulse/internal/util"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

// SchedulerParams holds dependencies for the cron scheduler
type SchedulerParams struct {
	fx.In

	Lc             fx.Lifecycle
	Cfg            *config.Config
	Logger         *slog.Logger
	IngestionUC    usecase.IngestionUsecase
	NotificationUC usecase.NotificationUsecase
}

type cronScheduler struct {
	cfg            *config.Config
	logger         *slog.Logger
	cron           *cron.Cron
	ingestionUC    usecase.IngestionUsecase
	notificationUC usecase.NotificationUsecase
	done           chan struct{}
}

// NewScheduler creates the cron delivery with every periodic job registered.
func NewScheduler(params SchedulerParams) (delivery.Delivery, error) {
	s := &cronScheduler{
		cfg:            params.Cfg,
		logger:         params.Logger,
		cron:           cron.New(),
		ingestionUC:    params.IngestionUC,
		notificationUC: params.NotificationUC,
		done:           make(chan struct{}),
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"ingest_sweep", params.Cfg.Scheduler.IngestSpec, s.runIngestSweep},
		{"dispatch_due", params.Cfg.Scheduler.DispatchSpec, s.runDispatch},
		{"weekly_summary", params.Cfg.Scheduler.WeeklySpec, s.runSummary(entity.NotificationWeeklySummary)},
		{"monthly_report", params.Cfg.Scheduler.MonthlySpec, s.runSummary(entity.NotificationMonthlyReport)},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
			defer cancel()

			job.run(ctx)
		}); err != nil {
			return nil, errors.Wrapf(err, "invalid cron spec for %s job", job.name)
		}
	}

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s, nil
}

// Serve starts the cron loop and blocks until the scheduler is stopped.
func (s *cronScheduler) Serve(ctx context.Context) error {
	s.logger.Info("Starting scheduler",
		slog.String("ingest_spec", s.cfg.Scheduler.IngestSpec),
		slog.String("dispatch_spec", s.cfg.Scheduler.DispatchSpec),
	)
	s.cron.Start()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

func (s *cronScheduler) stop(ctx context.Context) error {
	s.logger.Info("Shutting down scheduler")

	stopCtx := s.cron.Stop()
	close(s.done)

	// Wait for in-flight jobs, bounded by the caller's deadline.
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (s *cronScheduler) runIngestSweep(ctx context.Context) {
	start := time.Now()

	result, err := s.ingestionUC.IngestDue(ctx)
	if err != nil {
		s.logger.Error("[Scheduler] Ingestion sweep failed", slog.Any("error", err))

		return
	}

	s.logger.Info("[Scheduler] Ingestion sweep completed",
		slog.Int("listings", result.Listings),
		slog.Int("ingested", result.Ingested),
		slog.Int("throttled", result.Throttled),
		slog.Int("failed", result.Failed),
		slog.Int("inserted", result.Inserted),
		slog.String("elapsed", util.FormatDuration(time.Since(start))),
	)
}

func (s *cronScheduler) runDispatch(ctx context.Context) {
	result, err := s.notificationUC.DispatchDue(ctx, s.cfg.Scheduler.DispatchBatchSize)
	if err != nil {
		s.logger.Error("[Scheduler] Notification dispatch failed", slog.Any("error", err))

		return
	}

	if result.Dispatched > 0 {
		s.logger.Info("[Scheduler] Notification dispatch completed",
			slog.Int("dispatched", result.Dispatched),
			slog.Int("sent", result.Sent),
			slog.Int("failed", result.Failed),
		)
	}
}

func (s *cronScheduler) runSummary(typ entity.NotificationType) func(context.Context) {
	return func(ctx context.Context) {
		count, err := s.notificationUC.GenerateSummaries(ctx, typ)
		if err != nil {
			s.logger.Error("[Scheduler] Summary generation failed",
				slog.String("type", string(typ)),
				slog.Any("error", err),
			)

			return
		}

		s.logger.Info("[Scheduler] Summaries generated",
			slog.String("type", string(typ)),
			slog.Int("count", count),
		)
	}
}
