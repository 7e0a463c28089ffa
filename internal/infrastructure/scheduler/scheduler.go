package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"go.uber.org/zap"
)

const defaultPurgeInterval = 15 * time.Minute

// CodePurger deletes expired one-time codes. Satisfied by otp.Service.
type CodePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping until Stop is called.
type Scheduler struct {
	codes    CodePurger
	logger   *logger.Logger
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(codes CodePurger, logger *logger.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &Scheduler{
		codes:    codes,
		logger:   logger,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	// Run immediately at startup
	s.purgeExpiredCodes(ctx)

	s.logger.Info("OTP purge scheduler initialized",
		zap.Duration("interval", s.interval),
		zap.Time("next_run", time.Now().Add(s.interval)),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.purgeExpiredCodes(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) purgeExpiredCodes(ctx context.Context) {
	startTime := time.Now()

	count, err := s.codes.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Failed to purge expired OTP codes", zap.Error(err))
		}
		return
	}
	if count > 0 {
		s.logger.Info("Purged expired OTP codes",
			zap.Int64("purged", count),
			zap.Duration("duration", time.Since(startTime)),
		)
	}
}
