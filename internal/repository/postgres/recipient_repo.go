package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventreminder/internal/domain"
)

type recipientRepository struct {
	DB *sql.DB
}

// NewRecipientRepository returns a RecipientDirectory backed by Postgres.
func NewRecipientRepository(db *sql.DB) domain.RecipientDirectory {
	return &recipientRepository{
		DB: db,
	}
}

func (r *recipientRepository) ListEligibleRecipients(ctx context.Context, eventID string) ([]*domain.Recipient, error) {
	query := `
		SELECT id, name, address
		FROM recipients
		WHERE event_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recipients := make([]*domain.Recipient, 0)
	for rows.Next() {
		rec := &domain.Recipient{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Address); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *recipientRepository) Personalize(ctx context.Context, recipientID string) (*domain.PersonalizationData, error) {
	query := `
		SELECT venue_name, venue_address, map_link
		FROM recipients
		WHERE id = $1
	`
	var venueNull, addrNull, linkNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, recipientID).Scan(&venueNull, &addrNull, &linkNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !venueNull.Valid && !addrNull.Valid && !linkNull.Valid {
		return nil, nil
	}
	return &domain.PersonalizationData{
		VenueName:    venueNull.String,
		VenueAddress: addrNull.String,
		MapLink:      linkNull.String,
	}, nil
}
