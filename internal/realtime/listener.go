package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshua-takyi/printer-admin/internal/metrics"
)

// Binding ties a watched table to the collection reload it triggers.
type Binding struct {
	Table  string
	Reload func(ctx context.Context) error
}

type listenerState int

const (
	stateIdle listenerState = iota
	stateOpening
	stateOpen
	stateClosing
)

// Listener keeps one subscription per binding and runs one reload per change event.
// Events are neither debounced nor coalesced. A closed listener may be opened again.
type Listener struct {
	feed     Feed
	bindings []Binding
	logger   *slog.Logger

	mu     sync.Mutex
	state  listenerState
	gen    uint64 // bumped by every Close; stale handlers and aborted opens compare against it
	subs   []Subscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewListener(feed Feed, logger *slog.Logger, bindings ...Binding) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{feed: feed, bindings: bindings, logger: logger}
}

// Open subscribes to every bound table. On a partial failure the handles already
// acquired are released and the error is returned.
func (l *Listener) Open(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case stateOpening, stateOpen:
		l.mu.Unlock()
		return ErrAlreadyOpen
	case stateClosing:
		l.mu.Unlock()
		return errors.New("realtime listener is closing")
	}
	gen := l.gen
	reloadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.state = stateOpening
	l.mu.Unlock()

	// the lock is not held while joining: the feed may deliver events for
	// channels joined earlier in this loop
	subs := make([]Subscription, 0, len(l.bindings))
	for _, b := range l.bindings {
		sub, err := l.feed.Subscribe(ctx, b.Table, AllEvents, l.handlerFor(reloadCtx, b, gen))
		if err != nil {
			l.mu.Lock()
			if l.gen == gen {
				l.state = stateIdle
			}
			l.mu.Unlock()
			releaseAll(subs)
			cancel()
			return fmt.Errorf("failed to subscribe to %s: %w", b.Table, err)
		}
		subs = append(subs, sub)
	}

	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		releaseAll(subs)
		cancel()
		return errors.New("realtime listener closed while opening")
	}
	l.subs = subs
	l.cancel = cancel
	l.state = stateOpen
	l.mu.Unlock()

	l.logger.Info("Realtime listener open", "channels", len(subs))
	return nil
}

func releaseAll(subs []Subscription) {
	for _, s := range subs {
		_ = s.Unsubscribe()
	}
}

func (l *Listener) handlerFor(ctx context.Context, b Binding, gen uint64) Handler {
	return func(ev ChangeEvent) {
		l.mu.Lock()
		if l.gen != gen || (l.state != stateOpening && l.state != stateOpen) {
			l.mu.Unlock()
			return
		}
		l.wg.Add(1)
		l.mu.Unlock()

		metrics.IncRealtimeEvent(b.Table)
		l.logger.Debug("Change received", "table", ev.Table, "type", ev.Type)

		go func() {
			defer l.wg.Done()
			if err := b.Reload(ctx); err != nil {
				l.logger.Error("Reload after change failed", "table", b.Table, "error", err)
			}
		}()
	}
}

// Close releases every subscription and waits for reloads already started. The
// listener is idle afterwards and may be opened again.
func (l *Listener) Close() error {
	l.mu.Lock()
	switch l.state {
	case stateIdle, stateClosing:
		l.mu.Unlock()
		return nil
	case stateOpening:
		// the pending Open sees the new generation and releases its handles
		l.gen++
		l.state = stateIdle
		l.mu.Unlock()
		return nil
	}
	l.state = stateClosing
	subs, cancel := l.subs, l.cancel
	l.subs, l.cancel = nil, nil
	l.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", s.Topic(), err))
		}
	}

	l.wg.Wait()
	cancel()

	l.mu.Lock()
	l.gen++
	l.state = stateIdle
	l.mu.Unlock()

	l.logger.Info("Realtime listener closed", "channels", len(subs))
	return errors.Join(errs...)
}

func (l *Listener) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateOpen
}

// Wait blocks until reloads started so far have finished.
func (l *Listener) Wait() {
	l.wg.Wait()
}
