package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertNotification = `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectNotifications = `
		SELECT id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications`
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch pipelines one insert per row. Outside a transaction the batch still
// commits or fails as a whole.
func (r *notificationRepository) CreateBatch(ctx context.Context, rows []*notification.Notification) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range rows {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		var data []byte
		if n.Data != nil {
			encoded, err := json.Marshal(n.Data)
			if err != nil {
				return fmt.Errorf("failed to encode data of notification %s: %w", n.ID, err)
			}
			data = encoded
		}
		batch.Queue(insertNotification,
			n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title, n.Message, data, n.IsRead, n.CreatedAt)
	}

	if err := GetQuerier(ctx, r.db).SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d notifications: %w", len(rows), err)
	}
	return nil
}

func collectNotification(row pgx.CollectableRow) (*notification.Notification, error) {
	var (
		n    notification.Notification
		kind string
		data []byte
	)
	if err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &kind, &n.Title, &n.Message,
		&data, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = notification.NotificationType(kind)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("notification %s has malformed data: %w", n.ID, err)
		}
	}
	return &n, nil
}

// ListInbox returns one page, newest first, plus the total across pages.
func (r *notificationRepository) ListInbox(ctx context.Context, f notification.InboxFilter) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)
	page := max(f.Page, 1)

	filter := ` WHERE recipient_id = $1 AND ($2::bool IS FALSE OR NOT is_read) AND ($3::text = '' OR type = $3)`

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+filter,
		f.RecipientID, f.UnreadOnly, string(f.Type)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := q.Query(ctx, selectNotifications+filter+` ORDER BY created_at DESC, id LIMIT $4 OFFSET $5`,
		f.RecipientID, f.UnreadOnly, string(f.Type), f.PageSize, (page-1)*f.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	list, err := pgx.CollectRows(rows, collectNotification)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read notifications: %w", err)
	}
	return list, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := GetQuerier(ctx, r.db).
		QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, recipientID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead matches only rows owned by recipientID; foreign ids are not counted.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := GetQuerier(ctx, r.db).Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE recipient_id = $1 AND id::text = ANY($2)`,
		recipientID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
