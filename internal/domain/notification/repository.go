package notification

import (
	"context"
)

// InboxFilter selects one page of a single employee's inbox, newest first.
// An empty Type matches every type.
type InboxFilter struct {
	RecipientID string
	Type        NotificationType
	UnreadOnly  bool
	Page        int
	PageSize    int
}

// NotificationRepository stores the in-app inbox. Recipients are employee ids.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []*Notification) error
	ListInbox(ctx context.Context, f InboxFilter) ([]*Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)

	// MarkRead stamps the given rows owned by recipientID and reports how many
	// matched. Rows already read keep their original read_at.
	MarkRead(ctx context.Context, recipientID string, ids []string) (int, error)
}
