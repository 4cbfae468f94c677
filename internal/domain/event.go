package domain

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// Event is the real-world occurrence notifications are about (e.g. an
// election day). The notification core only reads events; the admin
// surface owns their lifecycle.
// swagger:model Event
type Event struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Date                 time.Time `json:"date"`
	Location             string    `json:"location"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// EventStore provides read-only access to events.
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
}
