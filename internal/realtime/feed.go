// Package realtime subscribes to row-level change notifications of the hosted
// database and turns them into collection reloads.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// EventMask selects which change types a subscription receives.
type EventMask string

const (
	AllEvents    EventMask = "*"
	InsertEvents EventMask = "INSERT"
	UpdateEvents EventMask = "UPDATE"
	DeleteEvents EventMask = "DELETE"
)

func (m EventMask) Matches(t EventType) bool {
	if m == AllEvents || m == "" {
		return true
	}
	return strings.EqualFold(string(m), string(t))
}

var (
	ErrFeedClosed   = errors.New("realtime feed is closed")
	ErrAlreadyOpen  = errors.New("realtime listener already open")
	ErrJoinRejected = errors.New("realtime channel join rejected")
)

// ChangeEvent is the payload of one insert, update or delete on a watched table.
type ChangeEvent struct {
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	Record          json.RawMessage `json:"record,omitempty"`
	OldRecord       json.RawMessage `json:"old_record,omitempty"`
	CommitTimestamp string          `json:"commit_timestamp,omitempty"`
}

type Handler func(ChangeEvent)

type Subscription interface {
	Topic() string
	Unsubscribe() error
}

type Feed interface {
	Subscribe(ctx context.Context, table string, mask EventMask, handler Handler) (Subscription, error)
}

// channelNames are the dashboard's channel names for the watched tables.
var channelNames = map[string]string{
	"service_bookings":   "bookings",
	"printer_brands":     "brands",
	"printer_models":     "models",
	"problem_categories": "categories",
	"problems":           "problems",
	"gallery_images":     "gallery",
	"technicians":        "technicians",
}

// ChannelTopic names the channel that carries changes of a table. Tables outside
// the dashboard set use the table name with dashes.
func ChannelTopic(table string) string {
	name, ok := channelNames[table]
	if !ok {
		name = strings.ReplaceAll(table, "_", "-")
	}
	return "realtime:admin-" + name + "-changes"
}
