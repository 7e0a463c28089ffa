package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestSchedulerRunsAtStartAndOnTick(t *testing.T) {
	purger := &countingPurger{}
	s := NewScheduler(purger, logger.NewNop(), 10*time.Millisecond)

	s.Start(context.Background())
	assert.Equal(t, int32(1), purger.calls.Load())

	assert.Eventually(t, func() bool { return purger.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := purger.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, purger.calls.Load())
}

func TestSchedulerSurvivesErrors(t *testing.T) {
	purger := &countingPurger{err: errors.New("db down")}
	s := NewScheduler(purger, logger.NewNop(), 10*time.Millisecond)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestNewSchedulerDefaultsInterval(t *testing.T) {
	s := NewScheduler(&countingPurger{}, logger.NewNop(), 0)
	assert.Equal(t, defaultPurgeInterval, s.interval)
}
