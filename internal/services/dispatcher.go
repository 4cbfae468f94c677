package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventreminder/internal/domain"
)

const noAddressMessage = "no transport address"

type deliveryService struct {
	catalog    domain.NotificationCatalog
	eventStore domain.EventStore
	directory  domain.RecipientDirectory
	records    domain.DeliveryRecordRepository
	transport  domain.MessageTransport
	templates  domain.MessageTemplates
	logger     *slog.Logger
	now        func() time.Time
}

// NewDeliveryService returns the DeliveryService that fans notifications
// out to recipients. Recipient sends are sequential: the upstream
// transport is rate limited per sender identity.
func NewDeliveryService(
	catalog domain.NotificationCatalog,
	eventStore domain.EventStore,
	directory domain.RecipientDirectory,
	records domain.DeliveryRecordRepository,
	transport domain.MessageTransport,
	templates domain.MessageTemplates,
	logger *slog.Logger,
) domain.DeliveryService {
	return &deliveryService{
		catalog:    catalog,
		eventStore: eventStore,
		directory:  directory,
		records:    records,
		transport:  transport,
		templates:  templates,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *deliveryService) Dispatch(ctx context.Context, n *domain.ScheduledNotification) (*domain.DispatchSummary, error) {
	ok, err := s.catalog.MarkDispatching(ctx, n.ID)
	if err != nil {
		return nil, fmt.Errorf("mark dispatching: %w", err)
	}
	if !ok {
		// Another worker owns this notification; expected under
		// concurrent ticks.
		s.logger.Debug("notification not pending, skipping", "notification_id", n.ID)
		return nil, nil
	}
	return s.fanOut(ctx, n)
}

func (s *deliveryService) Resume(ctx context.Context, notificationID string) (*domain.DispatchSummary, error) {
	n, err := s.catalog.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if n.State != domain.StateDispatching {
		return nil, domain.ErrInvalidTransition
	}
	s.logger.Info("resuming stuck notification", "notification_id", n.ID)
	return s.fanOut(ctx, n)
}

// fanOut processes every recipient and finalizes the notification. A
// failure before the recipient loop leaves the notification in
// Dispatching for the operator recovery sweep; per-recipient failures
// are recorded and never abort the batch.
func (s *deliveryService) fanOut(ctx context.Context, n *domain.ScheduledNotification) (*domain.DispatchSummary, error) {
	event, err := s.eventStore.GetEvent(ctx, n.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	recipients, err := s.directory.ListEligibleRecipients(ctx, n.EventID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	subject := s.templates.Subject(n.Kind, event)
	summary := &domain.DispatchSummary{NotificationID: n.ID}
	for _, rcp := range recipients {
		summary.Attempted++
		rec := &domain.DeliveryRecord{
			NotificationID: n.ID,
			RecipientID:    rcp.ID,
		}
		if strings.TrimSpace(rcp.Address) == "" {
			msg := noAddressMessage
			rec.ErrorMessage = &msg
			summary.Failed++
		} else if err := s.transport.Send(ctx, rcp.Address, subject, s.composeBody(ctx, n, rcp)); err != nil {
			msg := err.Error()
			rec.ErrorMessage = &msg
			summary.Failed++
			s.logger.Warn("send failed", "notification_id", n.ID, "recipient_id", rcp.ID, "err", err)
		} else {
			at := s.now()
			rec.Sent = true
			rec.SentAt = &at
			rec.Delivered = true
			rec.DeliveredAt = &at
			summary.Succeeded++
		}
		if err := s.records.UpsertDispatchOutcome(ctx, rec); err != nil {
			s.logger.Error("record delivery outcome", "notification_id", n.ID, "recipient_id", rcp.ID, "err", err)
		}
	}

	if err := s.catalog.MarkSent(ctx, n.ID); err != nil {
		return summary, fmt.Errorf("mark sent: %w", err)
	}
	s.logger.Info("notification dispatched",
		"notification_id", n.ID,
		"kind", n.Kind,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

// composeBody appends recipient-specific venue detail to the stored
// message template when the directory can supply it.
func (s *deliveryService) composeBody(ctx context.Context, n *domain.ScheduledNotification, rcp *domain.Recipient) string {
	p, err := s.directory.Personalize(ctx, rcp.ID)
	if err != nil {
		s.logger.Warn("personalization lookup failed", "recipient_id", rcp.ID, "err", err)
		return n.MessageTemplate
	}
	if p == nil {
		return n.MessageTemplate
	}
	var b strings.Builder
	b.WriteString(n.MessageTemplate)
	if p.VenueName != "" {
		b.WriteString("\n\nYour assigned venue: ")
		b.WriteString(p.VenueName)
	}
	if p.VenueAddress != "" {
		b.WriteString("\nAddress: ")
		b.WriteString(p.VenueAddress)
	}
	if p.MapLink != "" {
		b.WriteString("\nMap: ")
		b.WriteString(p.MapLink)
	}
	return b.String()
}

func (s *deliveryService) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	updated, err := s.records.MarkRead(ctx, notificationID, recipientID, s.now())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !updated {
		// Already read; repeated acks are a no-op.
		s.logger.Debug("read ack ignored", "notification_id", notificationID, "recipient_id", recipientID)
	}
	return nil
}

func (s *deliveryService) MarkResponded(ctx context.Context, notificationID, recipientID string) error {
	updated, err := s.records.MarkResponded(ctx, notificationID, recipientID, s.now())
	if err != nil {
		return fmt.Errorf("mark responded: %w", err)
	}
	if !updated {
		s.logger.Debug("response ack ignored", "notification_id", notificationID, "recipient_id", recipientID)
	}
	return nil
}
