package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for notification operations.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrRunInProgress     = errors.New("a notification run is already in flight")
)

// NotificationKind identifies one of the fixed moments, relative to the
// event date, at which a reminder is sent.
type NotificationKind string

const (
	KindDayBefore        NotificationKind = "day_before"
	KindSameDayEarly     NotificationKind = "same_day_early"
	KindSameDayNoon      NotificationKind = "same_day_noon"
	KindSameDayAfternoon NotificationKind = "same_day_afternoon"
	KindAfterEvent       NotificationKind = "after_event"
)

// AllKinds returns every notification kind in schedule order.
func AllKinds() []NotificationKind {
	return []NotificationKind{
		KindDayBefore,
		KindSameDayEarly,
		KindSameDayNoon,
		KindSameDayAfternoon,
		KindAfterEvent,
	}
}

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindDayBefore, KindSameDayEarly, KindSameDayNoon, KindSameDayAfternoon, KindAfterEvent:
		return true
	}
	return false
}

// ScheduledFor computes the send instant for this kind given the event
// date. Times of day are resolved in loc.
func (k NotificationKind) ScheduledFor(eventDate time.Time, loc *time.Location) time.Time {
	d := eventDate.In(loc)
	day := func(offsetDays, hour int) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day()+offsetDays, hour, 0, 0, 0, loc)
	}
	switch k {
	case KindDayBefore:
		return day(-1, 10)
	case KindSameDayEarly:
		return day(0, 7)
	case KindSameDayNoon:
		return day(0, 12)
	case KindSameDayAfternoon:
		return day(0, 16)
	case KindAfterEvent:
		return day(1, 10)
	}
	panic(fmt.Sprintf("unknown notification kind %q", k))
}

// NotificationState is the lifecycle state of a ScheduledNotification.
// Pending -> Dispatching -> Sent is the happy path; Pending -> Cancelled
// is the only operator-driven transition.
type NotificationState string

const (
	StatePending     NotificationState = "pending"
	StateDispatching NotificationState = "dispatching"
	StateSent        NotificationState = "sent"
	StateCancelled   NotificationState = "cancelled"
)

// ScheduledNotification is one planned send moment for one event. Exactly
// one row exists per (event_id, kind) pair.
// swagger:model ScheduledNotification
type ScheduledNotification struct {
	ID              string            `json:"id"`
	EventID         string            `json:"event_id"`
	Kind            NotificationKind  `json:"kind"`
	MessageTemplate string            `json:"message_template"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	State           NotificationState `json:"state"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewScheduledNotification returns a Pending notification for the given
// event and kind.
func NewScheduledNotification(id, eventID string, kind NotificationKind, messageTemplate string, scheduledAt, now time.Time) *ScheduledNotification {
	return &ScheduledNotification{
		ID:              id,
		EventID:         eventID,
		Kind:            kind,
		MessageTemplate: messageTemplate,
		ScheduledAt:     scheduledAt,
		State:           StatePending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NotificationRepository defines storage operations for scheduled notifications.
type NotificationRepository interface {
	// CreateIfAbsent inserts n unless a row already exists for its
	// (event_id, kind) pair. Returns true when a row was created.
	CreateIfAbsent(ctx context.Context, n *ScheduledNotification) (bool, error)
	GetByID(ctx context.Context, id string) (*ScheduledNotification, error)
	ListByEventID(ctx context.Context, eventID string) ([]*ScheduledNotification, error)
	// FindDue returns Pending notifications with scheduled_at <= now,
	// ordered by scheduled_at then id.
	FindDue(ctx context.Context, now time.Time) ([]*ScheduledNotification, error)
	// ListPending returns all Pending notifications regardless of timing.
	ListPending(ctx context.Context) ([]*ScheduledNotification, error)
	// UpdateState transitions id from the expected current state to the
	// new one. Returns false without error when the row was not in the
	// expected state.
	UpdateState(ctx context.Context, id string, from, to NotificationState) (bool, error)
	// ListStuckDispatching returns notifications left in Dispatching
	// whose last update is older than the cutoff.
	ListStuckDispatching(ctx context.Context, cutoff time.Time) ([]*ScheduledNotification, error)
}

// NotificationCatalog owns the ScheduledNotification lifecycle.
type NotificationCatalog interface {
	// DeriveForEvent creates the five notification rows for an event with
	// notifications enabled. Re-invocation is a no-op for pairs that
	// already exist; it always returns the full current set for the event.
	// Returns ErrEventNotFound when the event does not exist and an empty
	// list when notifications are disabled.
	DeriveForEvent(ctx context.Context, eventID string) ([]*ScheduledNotification, error)
	Get(ctx context.Context, id string) (*ScheduledNotification, error)
	FindDue(ctx context.Context, now time.Time) ([]*ScheduledNotification, error)
	ListPending(ctx context.Context) ([]*ScheduledNotification, error)
	// MarkDispatching is the atomic Pending -> Dispatching gate. False
	// means another worker already owns the notification.
	MarkDispatching(ctx context.Context, id string) (bool, error)
	// MarkSent finalizes a dispatch. Rejected with ErrInvalidTransition
	// once the notification is already Sent.
	MarkSent(ctx context.Context, id string) error
	// MarkCancelled is the operator cancel, permitted only while Pending.
	MarkCancelled(ctx context.Context, id string) error
	// ListStuck returns notifications stuck in Dispatching for longer
	// than the threshold, for the operator recovery sweep.
	ListStuck(ctx context.Context, olderThan time.Duration) ([]*ScheduledNotification, error)
}

// MessageTemplates supplies the static message copy for each
// notification kind. Implementations panic on an unknown kind: the
// catalog of kinds is closed and an unknown value is a programming error.
type MessageTemplates interface {
	Subject(kind NotificationKind, event *Event) string
	Body(kind NotificationKind, event *Event) string
}
