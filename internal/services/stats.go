package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"eventreminder/internal/domain"
)

type statsService struct {
	eventStore     domain.EventStore
	notifRepo      domain.NotificationRepository
	records        domain.DeliveryRecordRepository
	contextTimeout time.Duration
}

// NewStatsService returns the read-only statistics aggregator.
func NewStatsService(eventStore domain.EventStore, notifRepo domain.NotificationRepository, records domain.DeliveryRecordRepository, timeout time.Duration) domain.StatsService {
	return &statsService{
		eventStore:     eventStore,
		notifRepo:      notifRepo,
		records:        records,
		contextTimeout: timeout,
	}
}

func (s *statsService) PerNotification(ctx context.Context, notificationID string) (*domain.NotificationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return s.build(ctx, n)
}

func (s *statsService) PerEvent(ctx context.Context, eventID string) ([]*domain.NotificationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventStore.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	notifications, err := s.notifRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	stats := make([]*domain.NotificationStats, 0, len(notifications))
	for _, n := range notifications {
		st, err := s.build(ctx, n)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *statsService) build(ctx context.Context, n *domain.ScheduledNotification) (*domain.NotificationStats, error) {
	counts, err := s.records.CountOutcomes(ctx, n.ID)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	return &domain.NotificationStats{
		NotificationID: n.ID,
		Kind:           n.Kind,
		Total:          counts.Total,
		Sent:           counts.Sent,
		Delivered:      counts.Delivered,
		Read:           counts.Read,
		Responded:      counts.Responded,
		SentPct:        pct(counts.Sent, counts.Total),
		DeliveredPct:   pct(counts.Delivered, counts.Total),
		ReadPct:        pct(counts.Read, counts.Total),
		RespondedPct:   pct(counts.Responded, counts.Total),
	}, nil
}

// pct returns part as a percentage of total, rounded to one decimal.
// A zero total yields 0, not NaN.
func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
