package domain

import "context"

// MessageTransport sends a single formatted message to a single
// recipient address (infrastructure port). Sends must respect ctx for
// cancellation and timeout; the upstream provider is rate limited, so
// callers send sequentially.
type MessageTransport interface {
	Send(ctx context.Context, address, subject, body string) error
}
