package domain

import "context"

// NotificationStats is the read-only roll-up of delivery outcomes for
// one notification. Percentages are computed against Total; a
// notification with no records reports 0 for all rates.
// swagger:model NotificationStats
type NotificationStats struct {
	NotificationID string           `json:"notification_id"`
	Kind           NotificationKind `json:"kind"`
	Total          int              `json:"total"`
	Sent           int              `json:"sent"`
	Delivered      int              `json:"delivered"`
	Read           int              `json:"read"`
	Responded      int              `json:"responded"`
	SentPct        float64          `json:"sent_pct"`
	DeliveredPct   float64          `json:"delivered_pct"`
	ReadPct        float64          `json:"read_pct"`
	RespondedPct   float64          `json:"responded_pct"`
}

// StatsService derives delivery statistics from delivery records.
type StatsService interface {
	PerNotification(ctx context.Context, notificationID string) (*NotificationStats, error)
	PerEvent(ctx context.Context, eventID string) ([]*NotificationStats, error)
}
