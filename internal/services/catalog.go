package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventreminder/internal/domain"
)

type notificationCatalog struct {
	eventStore     domain.EventStore
	notifRepo      domain.NotificationRepository
	templates      domain.MessageTemplates
	loc            *time.Location
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewNotificationCatalog returns the NotificationCatalog owning the
// ScheduledNotification lifecycle. loc resolves the local times of day
// each kind is scheduled at.
func NewNotificationCatalog(
	eventStore domain.EventStore,
	notifRepo domain.NotificationRepository,
	templates domain.MessageTemplates,
	loc *time.Location,
	logger *slog.Logger,
	timeout time.Duration,
) domain.NotificationCatalog {
	if loc == nil {
		loc = time.Local
	}
	return &notificationCatalog{
		eventStore:     eventStore,
		notifRepo:      notifRepo,
		templates:      templates,
		loc:            loc,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (c *notificationCatalog) DeriveForEvent(ctx context.Context, eventID string) ([]*domain.ScheduledNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()

	event, err := c.eventStore.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.NotificationsEnabled {
		return []*domain.ScheduledNotification{}, nil
	}

	now := c.now()
	created := 0
	for _, kind := range domain.AllKinds() {
		n := domain.NewScheduledNotification(
			uuid.New().String(),
			event.ID,
			kind,
			c.templates.Body(kind, event),
			kind.ScheduledFor(event.Date, c.loc),
			now,
		)
		ok, err := c.notifRepo.CreateIfAbsent(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("create notification %s: %w", kind, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		c.logger.Info("derived notifications for event", "event_id", event.ID, "created", created)
	}

	return c.notifRepo.ListByEventID(ctx, eventID)
}

func (c *notificationCatalog) Get(ctx context.Context, id string) (*domain.ScheduledNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()
	return c.notifRepo.GetByID(ctx, id)
}

func (c *notificationCatalog) FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()
	return c.notifRepo.FindDue(ctx, now)
}

func (c *notificationCatalog) ListPending(ctx context.Context) ([]*domain.ScheduledNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()
	return c.notifRepo.ListPending(ctx)
}

func (c *notificationCatalog) MarkDispatching(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()
	return c.notifRepo.UpdateState(ctx, id, domain.StatePending, domain.StateDispatching)
}

func (c *notificationCatalog) MarkSent(ctx context.Context, id string) error {
	return c.transition(ctx, id, domain.StateDispatching, domain.StateSent)
}

func (c *notificationCatalog) MarkCancelled(ctx context.Context, id string) error {
	return c.transition(ctx, id, domain.StatePending, domain.StateCancelled)
}

// transition applies a guarded state change; a row in any other state
// yields ErrInvalidTransition without touching it.
func (c *notificationCatalog) transition(ctx context.Context, id string, from, to domain.NotificationState) error {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()

	ok, err := c.notifRepo.UpdateState(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	if ok {
		return nil
	}
	if _, err := c.notifRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}
	return domain.ErrInvalidTransition
}

func (c *notificationCatalog) ListStuck(ctx context.Context, olderThan time.Duration) ([]*domain.ScheduledNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()
	return c.notifRepo.ListStuckDispatching(ctx, c.now().Add(-olderThan))
}
