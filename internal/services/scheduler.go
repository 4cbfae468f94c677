package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"eventreminder/internal/domain"
)

// DefaultPeriod is the scheduler tick interval when none is configured.
const DefaultPeriod = 5 * time.Minute

// Scheduler drives the delivery engine on a fixed cadence and exposes a
// manual run. At most one run is in flight at a time; a tick that fires
// while the previous run is still going is skipped, not queued.
type Scheduler struct {
	catalog  domain.NotificationCatalog
	delivery domain.DeliveryService
	logger   *slog.Logger
	period   time.Duration
	now      func() time.Time

	inFlight atomic.Bool

	mu   sync.Mutex // guards stop/done
	stop chan struct{}
	done chan struct{}
}

// NewScheduler returns a stopped scheduler. A period <= 0 falls back to
// DefaultPeriod.
func NewScheduler(catalog domain.NotificationCatalog, delivery domain.DeliveryService, logger *slog.Logger, period time.Duration) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{
		catalog:  catalog,
		delivery: delivery,
		logger:   logger,
		period:   period,
		now:      time.Now,
	}
}

// Start begins periodic execution. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	s.logger.Info("scheduler started", "period", s.period)
}

// Stop halts periodic execution and waits for an in-flight run to
// finish. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	done := s.done
	s.stop = nil
	s.done = nil
	s.mu.Unlock()

	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.RunOnce(context.Background(), false); err != nil {
				if err == domain.ErrRunInProgress {
					s.logger.Debug("tick skipped, previous run still in flight")
					continue
				}
				s.logger.Error("scheduler tick failed", "err", err)
			}
		}
	}
}

// RunOnce processes due notifications immediately. With forceAll it
// ignores scheduled_at and processes every Pending notification
// (operator-forced catch-up). Returns the total number of successful
// sends across all processed notifications, or ErrRunInProgress when a
// run is already in flight.
func (s *Scheduler) RunOnce(ctx context.Context, forceAll bool) (int, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, domain.ErrRunInProgress
	}
	defer s.inFlight.Store(false)

	var notifications []*domain.ScheduledNotification
	var err error
	if forceAll {
		notifications, err = s.catalog.ListPending(ctx)
	} else {
		notifications, err = s.catalog.FindDue(ctx, s.now())
	}
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range notifications {
		summary, err := s.delivery.Dispatch(ctx, n)
		if err != nil {
			s.logger.Error("dispatch failed", "notification_id", n.ID, "err", err)
			continue
		}
		if summary != nil {
			total += summary.Succeeded
		}
	}
	return total, nil
}
