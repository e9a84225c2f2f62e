// Package notify is the operator-facing confirmation and notification surface.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const DefaultHistory = 50

type Notification struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Text          string        `json:"text"`
	Kind          Kind          `json:"kind"`
	AutoDismiss   time.Duration `json:"-"`
	AutoDismissMs int64         `json:"autoDismissMs,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Confirmer blocks until the operator answers a prompt.
type Confirmer interface {
	Confirm(ctx context.Context, title, text string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, title, text string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, title, text string) (bool, error) {
	return f(ctx, title, text)
}

// Always answers every prompt with the given value.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string, string) (bool, error) {
		return answer, nil
	})
}

// Multi delivers every notification to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Hub keeps the most recent notifications and fans new ones out to live subscribers.
type Hub struct {
	mu     sync.RWMutex
	recent []Notification
	limit  int
	subs   map[chan Notification]struct{}
	logger *slog.Logger
}

func NewHub(limit int, logger *slog.Logger) *Hub {
	if limit <= 0 {
		limit = DefaultHistory
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		limit:  limit,
		subs:   make(map[chan Notification]struct{}),
		logger: logger,
	}
}

func (h *Hub) Notify(ctx context.Context, n Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.AutoDismiss > 0 {
		n.AutoDismissMs = n.AutoDismiss.Milliseconds()
	}

	h.mu.Lock()
	h.recent = append(h.recent, n)
	if len(h.recent) > h.limit {
		h.recent = append([]Notification(nil), h.recent[len(h.recent)-h.limit:]...)
	}
	h.mu.Unlock()

	// sends stay under the read lock so a released channel is never written after close
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.logger.Debug("Dropping notification for slow subscriber", "notification_id", n.ID)
		}
	}
}

// Recent returns the stored notifications, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Notification(nil), h.recent...)
}

// Subscribe returns a channel of new notifications and a func that releases it.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
