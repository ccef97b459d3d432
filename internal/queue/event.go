// Package queue carries feed events over RabbitMQ: the message payload, a
// circuit-broken publisher and the consumer that appends them to a log
// file.
package queue

import (
	"time"

	"github.com/iliyamo/filmorate/internal/model"
)

// FeedQueueName is the durable queue feed events are published to.
const FeedQueueName = "feed.events"

// FeedEventMessage is the wire form of a recorded feed entry. It carries
// everything a downstream consumer needs without querying the store.
type FeedEventMessage struct {
	EventID    uint64 `json:"event_id"`
	UserID     uint64 `json:"user_id"`
	EventType  string `json:"event_type"`
	Operation  string `json:"operation"`
	EntityID   uint64 `json:"entity_id"`
	Timestamp  int64  `json:"timestamp"`
	RecordedAt string `json:"recorded_at"`
}

// NewFeedEventMessage converts a stored feed entry.
func NewFeedEventMessage(e model.FeedEvent) FeedEventMessage {
	return FeedEventMessage{
		EventID:    e.EventID,
		UserID:     e.UserID,
		EventType:  string(e.EventType),
		Operation:  string(e.Operation),
		EntityID:   e.EntityID,
		Timestamp:  e.Timestamp,
		RecordedAt: time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339Nano),
	}
}
