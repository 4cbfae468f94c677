package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventreminder/internal/domain"
)

// testLogger is a no-op logger so tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventStore is an in-memory EventStore for tests.
type fakeEventStore struct {
	byID map[string]*domain.Event
	err  error
}

func newFakeEventStore(events ...*domain.Event) *fakeEventStore {
	byID := make(map[string]*domain.Event)
	for _, e := range events {
		byID[e.ID] = e
	}
	return &fakeEventStore{byID: byID}
}

func (f *fakeEventStore) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEventNotFound
}

// fakeNotificationRepo is an in-memory NotificationRepository for tests.
type fakeNotificationRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.ScheduledNotification
	createErr error
	listErr   error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{byID: make(map[string]*domain.ScheduledNotification)}
}

func (f *fakeNotificationRepo) CreateIfAbsent(ctx context.Context, n *domain.ScheduledNotification) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.EventID == n.EventID && existing.Kind == n.Kind {
			return false, nil
		}
	}
	cp := *n
	f.byID[n.ID] = &cp
	return true, nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.byID[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.ScheduledNotification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ScheduledNotification, 0)
	for _, n := range f.byID {
		if n.EventID == eventID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortNotifications(out)
	return out, nil
}

func (f *fakeNotificationRepo) FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledNotification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ScheduledNotification, 0)
	for _, n := range f.byID {
		if n.State == domain.StatePending && !n.ScheduledAt.After(now) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortNotifications(out)
	return out, nil
}

func (f *fakeNotificationRepo) ListPending(ctx context.Context) ([]*domain.ScheduledNotification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ScheduledNotification, 0)
	for _, n := range f.byID {
		if n.State == domain.StatePending {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortNotifications(out)
	return out, nil
}

func (f *fakeNotificationRepo) UpdateState(ctx context.Context, id string, from, to domain.NotificationState) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok || n.State != from {
		return false, nil
	}
	n.State = to
	n.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeNotificationRepo) ListStuckDispatching(ctx context.Context, cutoff time.Time) ([]*domain.ScheduledNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ScheduledNotification, 0)
	for _, n := range f.byID {
		if n.State == domain.StateDispatching && n.UpdatedAt.Before(cutoff) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortNotifications(out)
	return out, nil
}

func (f *fakeNotificationRepo) add(n *domain.ScheduledNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.byID[n.ID] = &cp
}

func (f *fakeNotificationRepo) state(id string) domain.NotificationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].State
}

func sortNotifications(ns []*domain.ScheduledNotification) {
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].ScheduledAt.Equal(ns[j].ScheduledAt) {
			return ns[i].ScheduledAt.Before(ns[j].ScheduledAt)
		}
		return ns[i].ID < ns[j].ID
	})
}

// fakeRecordRepo is an in-memory DeliveryRecordRepository for tests.
type fakeRecordRepo struct {
	mu        sync.Mutex
	byKey     map[string]*domain.DeliveryRecord
	upsertErr error
	countErr  error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{byKey: make(map[string]*domain.DeliveryRecord)}
}

func recordKey(notificationID, recipientID string) string {
	return notificationID + "/" + recipientID
}

func (f *fakeRecordRepo) UpsertDispatchOutcome(ctx context.Context, rec *domain.DeliveryRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(rec.NotificationID, rec.RecipientID)
	existing, ok := f.byKey[key]
	if !ok {
		cp := *rec
		f.byKey[key] = &cp
		return nil
	}
	existing.Sent = rec.Sent
	existing.SentAt = rec.SentAt
	existing.Delivered = rec.Delivered
	existing.DeliveredAt = rec.DeliveredAt
	existing.ErrorMessage = rec.ErrorMessage
	return nil
}

func (f *fakeRecordRepo) MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byKey[recordKey(notificationID, recipientID)]
	if !ok {
		return false, domain.ErrNotFound
	}
	if rec.Read {
		return false, nil
	}
	rec.Read = true
	rec.ReadAt = &at
	return true, nil
}

func (f *fakeRecordRepo) MarkResponded(ctx context.Context, notificationID, recipientID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byKey[recordKey(notificationID, recipientID)]
	if !ok {
		return false, domain.ErrNotFound
	}
	if rec.Responded {
		return false, nil
	}
	rec.Responded = true
	rec.RespondedAt = &at
	if !rec.Read {
		rec.Read = true
		rec.ReadAt = &at
	}
	return true, nil
}

func (f *fakeRecordRepo) ListByNotificationID(ctx context.Context, notificationID string) ([]*domain.DeliveryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.DeliveryRecord, 0)
	for _, rec := range f.byKey {
		if rec.NotificationID == notificationID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecipientID < out[j].RecipientID })
	return out, nil
}

func (f *fakeRecordRepo) CountOutcomes(ctx context.Context, notificationID string) (*domain.DeliveryCounts, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &domain.DeliveryCounts{}
	for _, rec := range f.byKey {
		if rec.NotificationID != notificationID {
			continue
		}
		c.Total++
		if rec.Sent {
			c.Sent++
		}
		if rec.Delivered {
			c.Delivered++
		}
		if rec.Read {
			c.Read++
		}
		if rec.Responded {
			c.Responded++
		}
	}
	return c, nil
}

func (f *fakeRecordRepo) get(notificationID, recipientID string) *domain.DeliveryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.byKey[recordKey(notificationID, recipientID)]; ok {
		cp := *rec
		return &cp
	}
	return nil
}

// fakeDirectory is an in-memory RecipientDirectory for tests.
type fakeDirectory struct {
	recipients      []*domain.Recipient
	personalization map[string]*domain.PersonalizationData
	listErr         error
	personalizeErr  error
}

func (f *fakeDirectory) ListEligibleRecipients(ctx context.Context, eventID string) ([]*domain.Recipient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.recipients, nil
}

func (f *fakeDirectory) Personalize(ctx context.Context, recipientID string) (*domain.PersonalizationData, error) {
	if f.personalizeErr != nil {
		return nil, f.personalizeErr
	}
	return f.personalization[recipientID], nil
}

// sentMessage captures one transport send.
type sentMessage struct {
	Address string
	Subject string
	Body    string
}

// fakeTransport is an in-memory MessageTransport for tests. failFor maps
// an address to the error its sends should return.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeTransport) Send(ctx context.Context, address, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[address]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{Address: address, Subject: subject, Body: body})
	return nil
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeTemplates is a deterministic MessageTemplates for tests.
type fakeTemplates struct{}

func (fakeTemplates) Subject(kind domain.NotificationKind, event *domain.Event) string {
	return "subject " + string(kind) + " " + event.Name
}

func (fakeTemplates) Body(kind domain.NotificationKind, event *domain.Event) string {
	return "body " + string(kind) + " " + event.Name
}
