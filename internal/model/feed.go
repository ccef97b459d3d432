package model

// EventType classifies feed entries.
type EventType string

const (
	EventLike   EventType = "LIKE"
	EventReview EventType = "REVIEW"
	EventFriend EventType = "FRIEND"
)

// Operation is what happened to the entity of a feed entry.
type Operation string

const (
	OpAdd    Operation = "ADD"
	OpRemove Operation = "REMOVE"
	OpUpdate Operation = "UPDATE"
)

// FeedEvent is an immutable entry of a user's activity feed. Timestamp is
// milliseconds since the Unix epoch.
type FeedEvent struct {
	EventID   uint64    `json:"eventId"`
	UserID    uint64    `json:"userId"`
	EventType EventType `json:"eventType"`
	Operation Operation `json:"operation"`
	EntityID  uint64    `json:"entityId"`
	Timestamp int64     `json:"timestamp"`
}
