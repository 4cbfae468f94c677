package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventreminder/internal/domain"
)

type deliveryRecordRepository struct {
	DB *sql.DB
}

// NewDeliveryRecordRepository returns a DeliveryRecordRepository backed by Postgres.
func NewDeliveryRecordRepository(db *sql.DB) domain.DeliveryRecordRepository {
	return &deliveryRecordRepository{
		DB: db,
	}
}

// UpsertDispatchOutcome writes only the dispatch-owned fields so a
// re-run never clobbers read/responded acknowledgements.
func (r *deliveryRecordRepository) UpsertDispatchOutcome(ctx context.Context, rec *domain.DeliveryRecord) error {
	query := `
		INSERT INTO delivery_records (notification_id, recipient_id, sent, sent_at, delivered, delivered_at, error_message, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (notification_id, recipient_id) DO UPDATE SET
			sent = EXCLUDED.sent,
			sent_at = EXCLUDED.sent_at,
			delivered = EXCLUDED.delivered,
			delivered_at = EXCLUDED.delivered_at,
			error_message = EXCLUDED.error_message,
			updated_at = NOW()
	`
	_, err := r.DB.ExecContext(ctx, query,
		rec.NotificationID, rec.RecipientID, rec.Sent, rec.SentAt, rec.Delivered, rec.DeliveredAt, rec.ErrorMessage,
	)
	return err
}

func (r *deliveryRecordRepository) MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error) {
	query := `
		UPDATE delivery_records
		SET read = TRUE, read_at = $3, updated_at = NOW()
		WHERE notification_id = $1 AND recipient_id = $2 AND read = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, notificationID, recipientID, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}
	return false, r.requireRecord(ctx, notificationID, recipientID)
}

// MarkResponded also sets read where it was not yet observed: a response
// without a read receipt is legal.
func (r *deliveryRecordRepository) MarkResponded(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error) {
	query := `
		UPDATE delivery_records
		SET responded = TRUE, responded_at = $3, read = TRUE, read_at = COALESCE(read_at, $3), updated_at = NOW()
		WHERE notification_id = $1 AND recipient_id = $2 AND responded = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, notificationID, recipientID, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}
	return false, r.requireRecord(ctx, notificationID, recipientID)
}

// requireRecord distinguishes an already-marked record from a missing
// one after a guarded update touched no rows.
func (r *deliveryRecordRepository) requireRecord(ctx context.Context, notificationID, recipientID string) error {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM delivery_records
			WHERE notification_id = $1 AND recipient_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, notificationID, recipientID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (r *deliveryRecordRepository) ListByNotificationID(ctx context.Context, notificationID string) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT notification_id, recipient_id, sent, sent_at, delivered, delivered_at, read, read_at, responded, responded_at, error_message
		FROM delivery_records
		WHERE notification_id = $1
		ORDER BY recipient_id
	`
	rows, err := r.DB.QueryContext(ctx, query, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]*domain.DeliveryRecord, 0)
	for rows.Next() {
		rec := &domain.DeliveryRecord{}
		var sentAt, deliveredAt, readAt, respondedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(
			&rec.NotificationID, &rec.RecipientID,
			&rec.Sent, &sentAt, &rec.Delivered, &deliveredAt,
			&rec.Read, &readAt, &rec.Responded, &respondedAt, &errMsg,
		); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			rec.SentAt = &sentAt.Time
		}
		if deliveredAt.Valid {
			rec.DeliveredAt = &deliveredAt.Time
		}
		if readAt.Valid {
			rec.ReadAt = &readAt.Time
		}
		if respondedAt.Valid {
			rec.RespondedAt = &respondedAt.Time
		}
		if errMsg.Valid {
			rec.ErrorMessage = &errMsg.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *deliveryRecordRepository) CountOutcomes(ctx context.Context, notificationID string) (*domain.DeliveryCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sent),
			COUNT(*) FILTER (WHERE delivered),
			COUNT(*) FILTER (WHERE read),
			COUNT(*) FILTER (WHERE responded)
		FROM delivery_records
		WHERE notification_id = $1
	`
	c := &domain.DeliveryCounts{}
	err := r.DB.QueryRowContext(ctx, query, notificationID).Scan(
		&c.Total, &c.Sent, &c.Delivered, &c.Read, &c.Responded,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
