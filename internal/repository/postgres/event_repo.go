package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventreminder/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventStore backed by Postgres.
func NewEventRepository(db *sql.DB) domain.EventStore {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, name, date, location, notifications_enabled, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Date, &e.Location, &e.NotificationsEnabled, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}
