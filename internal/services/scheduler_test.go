package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventreminder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDelivery is a controllable DeliveryService for scheduler tests.
type fakeDelivery struct {
	mu         sync.Mutex
	dispatched []string
	summary    func(n *domain.ScheduledNotification) *domain.DispatchSummary
	entered    chan struct{} // when set, closed once Dispatch is first entered
	block      chan struct{} // when set, Dispatch waits until it is closed
	enterOnce  sync.Once
}

func (f *fakeDelivery) Dispatch(ctx context.Context, n *domain.ScheduledNotification) (*domain.DispatchSummary, error) {
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.dispatched = append(f.dispatched, n.ID)
	f.mu.Unlock()
	if f.summary != nil {
		return f.summary(n), nil
	}
	return &domain.DispatchSummary{NotificationID: n.ID, Attempted: 1, Succeeded: 1}, nil
}

func (f *fakeDelivery) Resume(ctx context.Context, notificationID string) (*domain.DispatchSummary, error) {
	return nil, nil
}

func (f *fakeDelivery) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	return nil
}

func (f *fakeDelivery) MarkResponded(ctx context.Context, notificationID, recipientID string) error {
	return nil
}

func (f *fakeDelivery) dispatchedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dispatched...)
}

func schedulerFixture(delivery domain.DeliveryService, period time.Duration) (*Scheduler, *fakeNotificationRepo) {
	repo := newFakeNotificationRepo()
	catalog := NewNotificationCatalog(newFakeEventStore(), repo, fakeTemplates{}, time.UTC, testLogger, testTimeout)
	return NewScheduler(catalog, delivery, testLogger, period), repo
}

func TestScheduler_RunOnce_DueOnly(t *testing.T) {
	ctx := context.Background()
	delivery := &fakeDelivery{}
	sched, repo := schedulerFixture(delivery, time.Minute)

	now := time.Now()
	repo.add(&domain.ScheduledNotification{ID: "ntf-due", State: domain.StatePending, ScheduledAt: now.Add(-time.Minute)})
	repo.add(&domain.ScheduledNotification{ID: "ntf-future", State: domain.StatePending, ScheduledAt: now.Add(time.Hour)})

	sent, err := sched.RunOnce(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"ntf-due"}, delivery.dispatchedIDs())
}

func TestScheduler_RunOnce_ForceAll(t *testing.T) {
	ctx := context.Background()
	delivery := &fakeDelivery{}
	sched, repo := schedulerFixture(delivery, time.Minute)

	now := time.Now()
	repo.add(&domain.ScheduledNotification{ID: "ntf-due", State: domain.StatePending, ScheduledAt: now.Add(-time.Minute)})
	repo.add(&domain.ScheduledNotification{ID: "ntf-future", State: domain.StatePending, ScheduledAt: now.Add(time.Hour)})
	repo.add(&domain.ScheduledNotification{ID: "ntf-sent", State: domain.StateSent, ScheduledAt: now.Add(-time.Hour)})

	sent, err := sched.RunOnce(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"ntf-due", "ntf-future"}, delivery.dispatchedIDs())
}

func TestScheduler_RunOnce_CountsSuccessesAcrossNotifications(t *testing.T) {
	ctx := context.Background()
	delivery := &fakeDelivery{
		summary: func(n *domain.ScheduledNotification) *domain.DispatchSummary {
			if n.ID == "ntf-skipped" {
				// Another worker owned it.
				return nil
			}
			return &domain.DispatchSummary{NotificationID: n.ID, Attempted: 3, Succeeded: 2, Failed: 1}
		},
	}
	sched, repo := schedulerFixture(delivery, time.Minute)

	now := time.Now()
	repo.add(&domain.ScheduledNotification{ID: "ntf-a", State: domain.StatePending, ScheduledAt: now.Add(-2 * time.Minute)})
	repo.add(&domain.ScheduledNotification{ID: "ntf-b", State: domain.StatePending, ScheduledAt: now.Add(-time.Minute)})
	repo.add(&domain.ScheduledNotification{ID: "ntf-skipped", State: domain.StatePending, ScheduledAt: now})

	sent, err := sched.RunOnce(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 4, sent)
}

func TestScheduler_RunOnce_NoOverlap(t *testing.T) {
	ctx := context.Background()
	delivery := &fakeDelivery{entered: make(chan struct{}), block: make(chan struct{})}
	sched, repo := schedulerFixture(delivery, time.Minute)
	repo.add(&domain.ScheduledNotification{ID: "ntf-due", State: domain.StatePending, ScheduledAt: time.Now().Add(-time.Minute)})

	finished := make(chan struct{})
	go func() {
		_, err := sched.RunOnce(ctx, false)
		assert.NoError(t, err)
		close(finished)
	}()

	// Wait until the first run is inside Dispatch, then a second run must
	// be refused rather than overlap.
	<-delivery.entered
	_, err := sched.RunOnce(ctx, false)
	require.ErrorIs(t, err, domain.ErrRunInProgress)

	close(delivery.block)
	<-finished

	// After the first run finishes, another run may proceed.
	_, err = sched.RunOnce(ctx, false)
	require.NoError(t, err)
}

func TestScheduler_Periodic(t *testing.T) {
	delivery := &fakeDelivery{}
	sched, repo := schedulerFixture(delivery, 20*time.Millisecond)
	repo.add(&domain.ScheduledNotification{ID: "ntf-due", State: domain.StatePending, ScheduledAt: time.Now().Add(-time.Minute)})

	sched.Start()
	// Start while running is a no-op.
	sched.Start()

	require.Eventually(t, func() bool {
		return len(delivery.dispatchedIDs()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	sched.Stop()
	// Stop while stopped is a no-op.
	sched.Stop()
}
