package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/google/uuid"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 5 * time.Second
	defaultWorkerCount   = 2
	defaultQueueSize     = 1000

	defaultPageSize = 20
	maxPageSize     = 100
)

// Config tunes the background writers. Zero values take the defaults above.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = defaultWorkerCount
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	return c
}

type notifier struct {
	repo notification.NotificationRepository
	cfg  Config
	now  func() time.Time

	// mu guards closed so no send races the close of queue.
	mu     sync.RWMutex
	closed bool
	queue  chan *notification.Notification
	wg     sync.WaitGroup
}

// NewNotificationService starts the writer pool. Rows are only persisted here.
func NewNotificationService(repo notification.NotificationRepository, cfg Config) notification.Notifier {
	cfg = cfg.withDefaults()
	s := &notifier{
		repo:  repo,
		cfg:   cfg,
		now:   time.Now,
		queue: make(chan *notification.Notification, cfg.QueueSize),
	}

	s.wg.Add(cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		go s.run(i)
	}

	slog.Info("Notification writers started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)
	return s
}

func (s *notifier) build(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   s.now(),
	}
}

// QueueNotification hands the row to a writer. Once stopped, or when the queue is
// full, the row is inserted synchronously instead.
func (s *notifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if !req.Type.IsValid() {
		return notification.ErrInvalidNotificationType
	}
	if req.RecipientID == "" {
		return notification.ErrMissingRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n := s.build(req)

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return s.repo.Create(ctx, n)
	}
	select {
	case s.queue <- n:
		s.mu.RUnlock()
		return nil
	default:
		s.mu.RUnlock()
	}

	slog.Warn("Notification queue full, writing synchronously", "recipient_id", req.RecipientID, "type", req.Type)
	return s.repo.Create(ctx, n)
}

// Inbox returns one page of the recipient's notifications with the unread badge
// count. Out of range paging falls back to the defaults.
func (s *notifier) Inbox(ctx context.Context, req notification.InboxRequest) (*notification.NotificationListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := notification.InboxFilter{
		RecipientID: req.RecipientID,
		Type:        req.Type,
		UnreadOnly:  req.UnreadOnly,
		Page:        max(req.Page, 1),
		PageSize:    req.PageSize,
	}
	if f.PageSize < 1 || f.PageSize > maxPageSize {
		f.PageSize = defaultPageSize
	}

	rows, total, err := s.repo.ListInbox(ctx, f)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	resp := &notification.NotificationListResponse{
		Notifications: make([]notification.NotificationResponse, 0, len(rows)),
		Total:         total,
		UnreadCount:   unread,
		Page:          f.Page,
		PageSize:      f.PageSize,
	}
	for _, n := range rows {
		resp.Notifications = append(resp.Notifications, notification.ToResponse(n))
	}
	return resp, nil
}

// MarkRead fails with ErrNotificationNotFound when none of the ids belong to the
// recipient, so a foreign id is indistinguishable from a missing one.
func (s *notifier) MarkRead(ctx context.Context, recipientID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	matched, err := s.repo.MarkRead(ctx, recipientID, req.NotificationIDs)
	if err != nil {
		return err
	}
	if matched == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// Stop closes the queue and waits for the writers to persist what it held.
// Later calls are no-ops.
func (s *notifier) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Notification writers stopped")
}
