package notification

import (
	"context"
)

// Notifier is how the engine tells employees about auto-checkouts, absences and
// resolved requests. Producers queue; the inbox endpoints read.
type Notifier interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	Inbox(ctx context.Context, req InboxRequest) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, recipientID string, req MarkAsReadRequest) error

	// Stop drains queued rows to storage.
	Stop()
}
