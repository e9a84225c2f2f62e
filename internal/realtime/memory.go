package realtime

import (
	"context"
	"sync"
	"time"
)

// MemoryFeed is an in-process feed. It serves local development without a realtime
// endpoint and drives listener tests.
type MemoryFeed struct {
	mu     sync.RWMutex
	subs   map[string]map[int]*memorySubscription
	nextID int
}

type memorySubscription struct {
	feed    *MemoryFeed
	id      int
	table   string
	mask    EventMask
	handler Handler
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]*memorySubscription)}
}

func (f *MemoryFeed) Subscribe(ctx context.Context, table string, mask EventMask, handler Handler) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	sub := &memorySubscription{feed: f, id: f.nextID, table: table, mask: mask, handler: handler}
	if f.subs[table] == nil {
		f.subs[table] = make(map[int]*memorySubscription)
	}
	f.subs[table][sub.id] = sub
	return sub, nil
}

// Publish delivers the event synchronously and returns the number of handlers called.
func (f *MemoryFeed) Publish(event ChangeEvent) int {
	if event.CommitTimestamp == "" {
		event.CommitTimestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.Schema == "" {
		event.Schema = "public"
	}

	f.mu.RLock()
	handlers := make([]Handler, 0, len(f.subs[event.Table]))
	for _, sub := range f.subs[event.Table] {
		if sub.mask.Matches(event.Type) {
			handlers = append(handlers, sub.handler)
		}
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return len(handlers)
}

// Subscribers counts live subscriptions; an empty table name counts all of them.
func (f *MemoryFeed) Subscribers(table string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if table != "" {
		return len(f.subs[table])
	}
	total := 0
	for _, subs := range f.subs {
		total += len(subs)
	}
	return total
}

func (s *memorySubscription) Topic() string {
	return ChannelTopic(s.table)
}

func (s *memorySubscription) Unsubscribe() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.subs[s.table], s.id)
	if len(s.feed.subs[s.table]) == 0 {
		delete(s.feed.subs, s.table)
	}
	return nil
}
