package memstore

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
)

type notificationRepo struct{ s *Store }

func (s *Store) Notifications() notification.NotificationRepository { return notificationRepo{s} }

func (r notificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r notificationRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range ns {
		cp := *n
		if cp.ID == "" {
			cp.ID = newID()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = r.s.now()
		}
		r.s.notifications = append(r.s.notifications, &cp)
	}
	return nil
}

func (r notificationRepo) ListInbox(ctx context.Context, f notification.InboxFilter) ([]*notification.Notification, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*notification.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID != f.RecipientID || (f.UnreadOnly && n.IsRead) {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		cp := *n
		all = append(all, &cp)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, f.Page, f.PageSize), len(all), nil
}

func (r notificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, row := range r.s.notifications {
		if row.RecipientID == recipientID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, recipientID string, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	now := r.s.now()
	matched := 0
	for _, n := range r.s.notifications {
		if _, ok := want[n.ID]; !ok || n.RecipientID != recipientID {
			continue
		}
		matched++
		if !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return matched, nil
}

// NotificationsFor returns stored notifications for recipient in insertion order.
func (s *Store) NotificationsFor(recipientID string) []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out
}
