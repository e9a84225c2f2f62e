package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultHeartbeat = 30 * time.Second
	joinTimeout      = 10 * time.Second
	writeTimeout     = 10 * time.Second
	protocolVersion  = "1.0.0"
)

const (
	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"
	eventSystem    = "system"
	phoenixTopic   = "phoenix"
)

type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
	JoinRef *string         `json:"join_ref,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changesPayload struct {
	Data ChangeEvent `json:"data"`
}

type joinConfig struct {
	Config struct {
		Broadcast struct {
			Self bool `json:"self"`
		} `json:"broadcast"`
		Presence struct {
			Key string `json:"key"`
		} `json:"presence"`
		PostgresChanges []postgresFilter `json:"postgres_changes"`
	} `json:"config"`
	AccessToken string `json:"access_token,omitempty"`
}

type postgresFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// SupabaseFeed speaks the Supabase Realtime channel protocol over one websocket.
// A dropped connection is logged and not re-established.
type SupabaseFeed struct {
	conn      *websocket.Conn
	apiKey    string
	heartbeat time.Duration
	logger    *slog.Logger

	writeMu sync.Mutex
	ref     atomic.Uint64

	mu       sync.Mutex
	channels map[string]*supabaseChannel
	pending  map[string]chan replyPayload

	done      chan struct{}
	closeOnce sync.Once
	connOnce  sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

type supabaseChannel struct {
	feed    *SupabaseFeed
	topic   string
	table   string
	mask    EventMask
	joinRef string
	handler Handler
	once    sync.Once
}

// RealtimeURL builds the websocket endpoint from the project URL.
func RealtimeURL(projectURL, apiKey string) (string, error) {
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid project url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported project url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1/websocket"
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("vsn", protocolVersion)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DialSupabase connects to the realtime endpoint of projectURL and starts the
// read and heartbeat loops.
func DialSupabase(ctx context.Context, projectURL, apiKey string, heartbeat time.Duration, logger *slog.Logger) (*SupabaseFeed, error) {
	endpoint, err := RealtimeURL(projectURL, apiKey)
	if err != nil {
		return nil, err
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to realtime: %w", err)
	}

	f := &SupabaseFeed{
		conn:      conn,
		apiKey:    apiKey,
		heartbeat: heartbeat,
		logger:    logger,
		channels:  make(map[string]*supabaseChannel),
		pending:   make(map[string]chan replyPayload),
		done:      make(chan struct{}),
	}

	f.wg.Add(2)
	go f.readLoop()
	go f.heartbeatLoop()

	logger.Info("Connected to realtime", "host", conn.RemoteAddr().String())
	return f, nil
}

func (f *SupabaseFeed) Subscribe(ctx context.Context, table string, mask EventMask, handler Handler) (Subscription, error) {
	if mask == "" {
		mask = AllEvents
	}

	topic := ChannelTopic(table)
	ch := &supabaseChannel{
		feed:    f,
		topic:   topic,
		table:   table,
		mask:    mask,
		joinRef: f.nextRef(),
		handler: handler,
	}

	f.mu.Lock()
	if f.isClosed() {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	if _, exists := f.channels[topic]; exists {
		f.mu.Unlock()
		return nil, fmt.Errorf("already subscribed to %s", topic)
	}
	f.channels[topic] = ch
	reply := make(chan replyPayload, 1)
	f.pending[ch.joinRef] = reply
	f.mu.Unlock()

	var cfg joinConfig
	cfg.Config.PostgresChanges = []postgresFilter{{Event: string(mask), Schema: "public", Table: table}}
	cfg.AccessToken = f.apiKey

	if err := f.send(topic, eventJoin, cfg, ch.joinRef, ch.joinRef); err != nil {
		f.forget(ch)
		return nil, fmt.Errorf("failed to join %s: %w", topic, err)
	}

	timer := time.NewTimer(joinTimeout)
	defer timer.Stop()

	select {
	case r, ok := <-reply:
		if !ok {
			f.forget(ch)
			return nil, ErrFeedClosed
		}
		if r.Status != "ok" {
			f.forget(ch)
			return nil, fmt.Errorf("%w: %s: %s", ErrJoinRejected, topic, string(r.Response))
		}
	case <-ctx.Done():
		f.forget(ch)
		return nil, ctx.Err()
	case <-timer.C:
		f.forget(ch)
		return nil, fmt.Errorf("timed out joining %s", topic)
	}

	f.logger.Debug("Joined realtime channel", "topic", topic, "table", table)
	return ch, nil
}

func (c *supabaseChannel) Topic() string {
	return c.topic
}

func (c *supabaseChannel) Unsubscribe() error {
	var err error
	c.once.Do(func() {
		c.feed.forget(c)
		if c.feed.isClosed() {
			return
		}
		err = c.feed.send(c.topic, eventLeave, struct{}{}, c.feed.nextRef(), c.joinRef)
	})
	return err
}

// Close leaves the socket. Subscriptions become inert.
func (f *SupabaseFeed) Close() error {
	f.connOnce.Do(func() {
		f.shutdown()
		f.writeMu.Lock()
		_ = f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = f.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.writeMu.Unlock()
		if err := f.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			f.closeErr = err
		}
		f.wg.Wait()
	})
	return f.closeErr
}

func (f *SupabaseFeed) shutdown() {
	f.closeOnce.Do(func() {
		close(f.done)
		f.mu.Lock()
		for ref, ch := range f.pending {
			close(ch)
			delete(f.pending, ref)
		}
		f.mu.Unlock()
	})
}

func (f *SupabaseFeed) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *SupabaseFeed) forget(c *supabaseChannel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.channels[c.topic]; ok && cur == c {
		delete(f.channels, c.topic)
	}
	if ch, ok := f.pending[c.joinRef]; ok {
		delete(f.pending, c.joinRef)
		close(ch)
	}
}

func (f *SupabaseFeed) nextRef() string {
	return strconv.FormatUint(f.ref.Add(1), 10)
}

func (f *SupabaseFeed) send(topic, event string, payload any, ref, joinRef string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	msg := phxMessage{Topic: topic, Event: event, Payload: body, Ref: &ref}
	if joinRef != "" {
		msg.JoinRef = &joinRef
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return f.conn.WriteJSON(msg)
}

func (f *SupabaseFeed) readLoop() {
	defer f.wg.Done()
	defer f.shutdown()

	for {
		var msg phxMessage
		if err := f.conn.ReadJSON(&msg); err != nil {
			if f.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			f.logger.Error("Realtime connection dropped", "error", err)
			return
		}
		f.dispatch(msg)
	}
}

func (f *SupabaseFeed) dispatch(msg phxMessage) {
	switch msg.Event {
	case eventReply:
		if msg.Ref == nil {
			return
		}
		var r replyPayload
		if err := json.Unmarshal(msg.Payload, &r); err != nil {
			f.logger.Warn("Malformed realtime reply", "topic", msg.Topic, "error", err)
			return
		}
		f.mu.Lock()
		ch, ok := f.pending[*msg.Ref]
		if ok {
			delete(f.pending, *msg.Ref)
		}
		f.mu.Unlock()
		if ok {
			ch <- r
		}

	case eventChanges:
		var p changesPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			f.logger.Warn("Malformed change event", "topic", msg.Topic, "error", err)
			return
		}
		f.mu.Lock()
		ch, ok := f.channels[msg.Topic]
		f.mu.Unlock()
		if !ok {
			return
		}
		if p.Data.Table == "" {
			p.Data.Table = ch.table
		}
		if ch.mask.Matches(p.Data.Type) {
			ch.handler(p.Data)
		}

	case eventError, eventClose:
		f.logger.Warn("Realtime channel closed by server", "topic", msg.Topic, "event", msg.Event)

	case eventSystem:
		f.logger.Debug("Realtime system message", "topic", msg.Topic, "payload", string(msg.Payload))
	}
}

func (f *SupabaseFeed) heartbeatLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			if err := f.send(phoenixTopic, eventHeartbeat, struct{}{}, f.nextRef(), ""); err != nil {
				f.logger.Warn("Realtime heartbeat failed", "error", err)
			}
		}
	}
}
