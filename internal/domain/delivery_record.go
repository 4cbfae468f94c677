package domain

import (
	"context"
	"time"
)

// DeliveryRecord is the per-recipient outcome ledger for one
// notification. At most one row exists per (notification_id,
// recipient_id) pair; re-running a dispatch upserts the existing row.
// swagger:model DeliveryRecord
type DeliveryRecord struct {
	NotificationID string     `json:"notification_id"`
	RecipientID    string     `json:"recipient_id"`
	Sent           bool       `json:"sent"`
	SentAt         *time.Time `json:"sent_at"`
	Delivered      bool       `json:"delivered"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at"`
	Responded      bool       `json:"responded"`
	RespondedAt    *time.Time `json:"responded_at"`
	ErrorMessage   *string    `json:"error_message"`
}

// DeliveryCounts aggregates delivery outcomes for one notification.
type DeliveryCounts struct {
	Total     int
	Sent      int
	Delivered int
	Read      int
	Responded int
}

// DeliveryRecordRepository defines storage operations for delivery records.
type DeliveryRecordRepository interface {
	// UpsertDispatchOutcome writes the dispatch-owned fields (sent,
	// sent_at, delivered, delivered_at, error_message) for the record's
	// key, inserting the row if absent. Read/responded fields are never
	// touched by this call.
	UpsertDispatchOutcome(ctx context.Context, rec *DeliveryRecord) error
	// MarkRead sets read/read_at unless the record is already read, in
	// which case it returns false without touching the row. Returns
	// ErrNotFound when no record exists for the key.
	MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error)
	// MarkResponded sets responded/responded_at (and read/read_at when
	// not yet set) unless already responded. Returns ErrNotFound when no
	// record exists for the key.
	MarkResponded(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error)
	ListByNotificationID(ctx context.Context, notificationID string) ([]*DeliveryRecord, error)
	CountOutcomes(ctx context.Context, notificationID string) (*DeliveryCounts, error)
}

// DispatchSummary reports the outcome of fanning one notification out to
// its recipients. Partial failure is data here, not an error.
// swagger:model DispatchSummary
type DispatchSummary struct {
	NotificationID string `json:"notification_id"`
	Attempted      int    `json:"attempted"`
	Succeeded      int    `json:"succeeded"`
	Failed         int    `json:"failed"`
}

// DeliveryService fans notifications out to recipients and owns the
// delivery-record ledger.
type DeliveryService interface {
	// Dispatch sends one due notification to every eligible recipient.
	// Returns (nil, nil) when another worker already owns the
	// notification; never returns an error for per-recipient failures.
	Dispatch(ctx context.Context, n *ScheduledNotification) (*DispatchSummary, error)
	// Resume re-runs the fan-out for a notification stuck in Dispatching
	// after a crash. Safe to re-run because records are upserted by key.
	Resume(ctx context.Context, notificationID string) (*DispatchSummary, error)
	// MarkRead and MarkResponded are the inbound acknowledgement
	// mutators. Both are idempotent; a repeated mark is a no-op and a
	// missing record surfaces ErrNotFound.
	MarkRead(ctx context.Context, notificationID, recipientID string) error
	MarkResponded(ctx context.Context, notificationID, recipientID string) error
}
