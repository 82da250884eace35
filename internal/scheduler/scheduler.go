package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Refresher is the part of the weather controller the scheduler drives.
type Refresher interface {
	Refresh() <-chan struct{}
	LastCity() string
}

// Scheduler periodically re-submits the last looked-up city.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(target Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: refresh disabled")
		return nil
	}

	// The first tick is one interval out; the user's own submission is the first query.
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.tick)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: refresh enabled", zap.Duration("interval", s.interval))
	return nil
}

// tick submits one refresh and waits for it to resolve, so ticks never
// overlap with their own submissions.
func (s *Scheduler) tick() {
	city := s.target.LastCity()
	if city == "" {
		return
	}
	s.logger.Debug("scheduler: refreshing weather", zap.String("city", city))
	<-s.target.Refresh()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
