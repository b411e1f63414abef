package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/service"
)

// DigestScheduler runs digest sends on the configured cron expressions.
type DigestScheduler struct {
	cron    *cron.Cron
	digests *service.DigestService
	cfg     config.DigestConfig
	logger  *zap.Logger
}

// NewDigestScheduler constructs the scheduler.
func NewDigestScheduler(cfg config.DigestConfig, digests *service.DigestService, logger *zap.Logger) *DigestScheduler {
	return &DigestScheduler{
		cron:    cron.New(),
		digests: digests,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the daily and weekly jobs and begins the schedule.
func (s *DigestScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.DailyCron, func() {
		s.run(domain.DigestDaily)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.WeeklyCron, func() {
		s.run(domain.DigestWeekly)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("digest scheduler started",
		zap.String("daily", s.cfg.DailyCron),
		zap.String("weekly", s.cfg.WeeklyCron))
	return nil
}

// Stop halts the schedule and waits for running jobs.
func (s *DigestScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *DigestScheduler) run(freq domain.DigestFrequency) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sent, err := s.digests.SendAll(ctx, freq, time.Now())
	if err != nil {
		s.logger.Error("digest run failed", zap.Error(err), zap.String("frequency", freq.String()))
		return
	}
	s.logger.Info("digest run complete",
		zap.String("frequency", freq.String()),
		zap.Int("sent", sent))
}
