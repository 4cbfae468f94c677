package domain

import "context"

// Recipient is a registered participant as seen by the notification
// core: an identity plus a transport address. Recipients without an
// address are still enumerated so their skip can be recorded.
// swagger:model Recipient
type Recipient struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PersonalizationData is the recipient-specific detail appended to a
// message body when available (assigned venue and how to find it).
type PersonalizationData struct {
	VenueName    string
	VenueAddress string
	MapLink      string
}

// RecipientDirectory enumerates eligible recipients for an event and
// supplies per-recipient personalization data.
type RecipientDirectory interface {
	ListEligibleRecipients(ctx context.Context, eventID string) ([]*Recipient, error)
	// Personalize returns (nil, nil) when no personalization data exists
	// for the recipient.
	Personalize(ctx context.Context, recipientID string) (*PersonalizationData, error)
}
