package service

import (
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"fmt"
	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"time"
)

type (
	// RecheckService periodically re-runs Verify for dashboards that are pending verification or
	// verified without a proxy host, so owners do not have to poll after publishing DNS records.
	RecheckService interface {
		Start(ctx context.Context) error
		RunOnce(ctx context.Context) (int, error)
		Shutdown() error
	}

	recheckService struct {
		verification VerificationService
		scheduler    gocron.Scheduler
		interval     time.Duration
		schedule     string
	}
)

// NewRecheckService runs on the cron schedule when one is given, otherwise every interval.
func NewRecheckService(verification VerificationService, interval time.Duration, schedule string) (RecheckService, error) {
	if schedule == "" && interval <= 0 {
		return nil, fmt.Errorf("recheck needs an interval or a schedule")
	}
	if schedule != "" {
		if err := ParseSchedule(schedule); err != nil {
			return nil, err
		}
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLimitConcurrentJobs(1, gocron.LimitModeReschedule))
	if err != nil {
		return nil, err
	}
	return &recheckService{
		verification: verification,
		scheduler:    scheduler,
		interval:     interval,
		schedule:     schedule,
	}, nil
}

func (r *recheckService) Start(ctx context.Context) error {
	definition := gocron.DurationJob(r.interval)
	if r.schedule != "" {
		definition = gocron.CronJob(r.schedule, false)
	}

	job, err := r.scheduler.NewJob(
		definition,
		gocron.NewTask(r.run, ctx),
		gocron.WithName("domain-recheck"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return err
	}

	logger.Info("domain recheck job queued",
		zap.String("name", job.Name()),
		zap.Duration("interval", r.interval),
		zap.String("schedule", r.schedule))
	r.scheduler.Start()
	return nil
}

func (r *recheckService) run(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil {
		logger.Error("domain recheck failed", zap.Error(err))
	}
}

// RunOnce verifies every dashboard awaiting verification and returns how many reached the verified state.
func (r *recheckService) RunOnce(ctx context.Context) (int, error) {
	records, err := r.verification.AwaitingVerification(ctx)
	if err != nil {
		return 0, err
	}

	verified := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return verified, ctx.Err()
		}

		result, err := r.verification.Verify(ctx, rec.DashboardID)
		switch {
		case err == nil && result.State == types.StateVerified:
			verified++
		case types.IsKind(err, types.KindVerificationFailed):
			logger.Debug("domain still unverified",
				zap.Uint("dashboard_id", rec.DashboardID),
				zap.String("domain", rec.CustomDomain))
		case err != nil:
			logger.Warn("domain recheck failed",
				zap.Uint("dashboard_id", rec.DashboardID),
				zap.String("domain", rec.CustomDomain),
				zap.Error(err))
		}
	}
	return verified, nil
}

func (r *recheckService) Shutdown() error {
	return r.scheduler.Shutdown()
}

// ParseSchedule validates a five field cron expression.
func ParseSchedule(expression string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expression); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
