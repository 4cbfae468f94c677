package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventreminder/internal/domain"
)

const notificationColumns = "id, event_id, kind, message_template, scheduled_at, state, created_at, updated_at"

type notificationRepository struct {
	DB *sql.DB
}

// NewNotificationRepository returns a NotificationRepository backed by Postgres.
func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *domain.ScheduledNotification) (bool, error) {
	query := `
		INSERT INTO scheduled_notifications (id, event_id, kind, message_template, scheduled_at, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id, kind) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query,
		n.ID, n.EventID, string(n.Kind), n.MessageTemplate, n.ScheduledAt, string(n.State), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM scheduled_notifications
		WHERE id = $1
	`
	n := &domain.ScheduledNotification{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.EventID, &n.Kind, &n.MessageTemplate, &n.ScheduledAt, &n.State, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.ScheduledNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM scheduled_notifications
		WHERE event_id = $1
		ORDER BY scheduled_at ASC, id ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *notificationRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM scheduled_notifications
		WHERE state = 'pending' AND scheduled_at <= $1
		ORDER BY scheduled_at ASC, id ASC
	`
	return r.list(ctx, query, now)
}

func (r *notificationRepository) ListPending(ctx context.Context) ([]*domain.ScheduledNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM scheduled_notifications
		WHERE state = 'pending'
		ORDER BY scheduled_at ASC, id ASC
	`
	return r.list(ctx, query)
}

func (r *notificationRepository) UpdateState(ctx context.Context, id string, from, to domain.NotificationState) (bool, error) {
	query := `
		UPDATE scheduled_notifications
		SET state = $3, updated_at = NOW()
		WHERE id = $1 AND state = $2
	`
	result, err := r.DB.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *notificationRepository) ListStuckDispatching(ctx context.Context, cutoff time.Time) ([]*domain.ScheduledNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM scheduled_notifications
		WHERE state = 'dispatching' AND updated_at < $1
		ORDER BY scheduled_at ASC, id ASC
	`
	return r.list(ctx, query, cutoff)
}

func (r *notificationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ScheduledNotification, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifications := make([]*domain.ScheduledNotification, 0)
	for rows.Next() {
		n := &domain.ScheduledNotification{}
		if err := rows.Scan(&n.ID, &n.EventID, &n.Kind, &n.MessageTemplate, &n.ScheduledAt, &n.State, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
