package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often the poller runs when not configured.
const DefaultPollInterval = 5000 * time.Millisecond

// Scheduler drives periodic refreshes with a gocron duration job.
// Ticks never overlap: a tick that would start while the previous one is
// still running is skipped until the next interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	refresher Refresher
	interval  time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler creates a scheduler that calls r.Refresh every interval.
func NewScheduler(r Refresher, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		refresher: r,
		interval:  interval,
	}, nil
}

// Interval returns the poll interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start schedules the poll job, running the first cycle immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick),
		gocron.WithName("poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to create poll job: %w", err)
	}

	log.Debug().Dur("interval", s.interval).Msg("starting poll scheduler")
	s.scheduler.Start()
	s.started = true
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}
	s.refresher.Refresh(ctx)
}

// Stop cancels any in-flight tick and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	log.Debug().Msg("stopping poll scheduler")
	return s.scheduler.Shutdown()
}
