package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
)

const flushTimeout = 30 * time.Second

// batcher accumulates rows for one worker and writes them with a single insert.
type batcher struct {
	worker  int
	limit   int
	pending []*notification.Notification
	repo    notification.NotificationRepository
}

func (b *batcher) add(n *notification.Notification) {
	b.pending = append(b.pending, n)
	if len(b.pending) >= b.limit {
		b.flush()
	}
}

func (b *batcher) flush() {
	if len(b.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	count := len(b.pending)
	if err := b.repo.CreateBatch(ctx, b.pending); err != nil {
		slog.Error("Failed to persist notification batch", "worker", b.worker, "count", count, "error", err)
	} else {
		slog.Debug("Persisted notification batch", "worker", b.worker, "count", count)
	}
	b.pending = make([]*notification.Notification, 0, b.limit)
}

// run consumes the queue until it is closed, then writes whatever is left.
func (s *notifier) run(worker int) {
	defer s.wg.Done()

	b := &batcher{
		worker:  worker,
		limit:   s.cfg.BatchSize,
		pending: make([]*notification.Notification, 0, s.cfg.BatchSize),
		repo:    s.repo,
	}
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-s.queue:
			if !ok {
				b.flush()
				return
			}
			b.add(n)
		case <-ticker.C:
			b.flush()
		}
	}
}
