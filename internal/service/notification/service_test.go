package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFlushesOnStop(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{
		BatchSize:     50,
		FlushInterval: time.Hour,
		WorkerCount:   2,
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "emp-1",
			Type:        notification.TypeAutoCheckout,
			Title:       "Checked out",
			Message:     "You were checked out automatically",
		}))
	}
	svc.Stop()
	svc.Stop()

	assert.Len(t, store.NotificationsFor("emp-1"), 5)

	// After Stop the service still persists, synchronously.
	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        notification.TypeRequestResolved,
	}))
	assert.Len(t, store.NotificationsFor("emp-1"), 6)
}

func TestQueueRejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(memstore.New(nil).Notifications(), Config{})
	defer svc.Stop()

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        "birthday",
	})
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestQueueFullFallsBackToDirectInsert(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{
		BatchSize:     1000,
		FlushInterval: time.Hour,
		WorkerCount:   1,
		QueueSize:     1,
	})
	defer svc.Stop()

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "emp-1",
			Type:        notification.TypeAbsenceAlert,
		}))
	}
	svc.Stop()
	assert.Len(t, store.NotificationsFor("emp-1"), 20)
}

func TestInboxAndMarkRead(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{})

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "emp-1",
			Type:        notification.TypeRequestResolved,
			Title:       "Request approved",
		}))
	}
	svc.Stop()

	list, err := svc.Inbox(context.Background(), notification.InboxRequest{RecipientID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 3, list.UnreadCount)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)

	read := notification.MarkAsReadRequest{NotificationIDs: []string{list.Notifications[0].ID}}
	require.NoError(t, svc.MarkRead(context.Background(), "emp-1", read))
	// Already read still matches.
	require.NoError(t, svc.MarkRead(context.Background(), "emp-1", read))

	unread, err := svc.Inbox(context.Background(), notification.InboxRequest{RecipientID: "emp-1", UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, unread.Total)
	assert.Equal(t, 2, unread.UnreadCount)

	err = svc.MarkRead(context.Background(), "emp-1", notification.MarkAsReadRequest{})
	assert.Error(t, err)
}

func TestMarkReadForeignIDIsNotFound(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{})
	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        notification.TypeAutoCheckout,
	}))
	svc.Stop()
	id := store.NotificationsFor("emp-1")[0].ID

	err := svc.MarkRead(context.Background(), "emp-2", notification.MarkAsReadRequest{NotificationIDs: []string{id}})
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
	assert.False(t, store.NotificationsFor("emp-1")[0].IsRead)

	err = svc.MarkRead(context.Background(), "emp-1", notification.MarkAsReadRequest{
		NotificationIDs: []string{"6f1c1c3e-8f43-4a52-9d0e-1f6f3c1b2a10"},
	})
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestInboxFiltersByType(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{})
	for _, kind := range []notification.NotificationType{
		notification.TypeAbsenceAlert,
		notification.TypeAutoCheckout,
		notification.TypeAbsenceAlert,
	} {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "mgr-1",
			Type:        kind,
		}))
	}
	svc.Stop()

	list, err := svc.Inbox(context.Background(), notification.InboxRequest{
		RecipientID: "mgr-1",
		Type:        notification.TypeAbsenceAlert,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 3, list.UnreadCount)
	for _, n := range list.Notifications {
		assert.Equal(t, notification.TypeAbsenceAlert, n.Type)
	}

	_, err = svc.Inbox(context.Background(), notification.InboxRequest{RecipientID: "mgr-1", Type: "birthday"})
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestQueueRequiresRecipient(t *testing.T) {
	svc := NewNotificationService(memstore.New(nil).Notifications(), Config{})
	defer svc.Stop()

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		Type: notification.TypeAbsenceAlert,
	})
	assert.ErrorIs(t, err, notification.ErrMissingRecipient)
}

func TestWriterFlushesFullBatchWithoutStop(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{
		BatchSize:     2,
		FlushInterval: time.Hour,
		WorkerCount:   1,
	})
	defer svc.Stop()

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "emp-2",
			Type:        notification.TypeAbsenceAlert,
		}))
	}
	assert.Eventually(t, func() bool {
		return len(store.NotificationsFor("emp-2")) == 4
	}, time.Second, 10*time.Millisecond)
}

func TestQueueHonoursCancelledContext(t *testing.T) {
	store := memstore.New(nil)
	svc := NewNotificationService(store.Notifications(), Config{})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "emp-3",
		Type:        notification.TypeAutoCheckout,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
