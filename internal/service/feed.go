package service

import (
	"context"
	"time"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/metrics"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Publisher forwards recorded feed events to downstream consumers.
// Publish must not block on network I/O.
type Publisher interface {
	Publish(ctx context.Context, e model.FeedEvent) error
}

// FeedRecorder appends entries to the activity feed.
type FeedRecorder struct {
	store     repository.Store
	now       func() time.Time
	publisher Publisher
}

// FeedOption configures a FeedRecorder.
type FeedOption func(*FeedRecorder)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) FeedOption {
	return func(r *FeedRecorder) { r.now = now }
}

// WithPublisher hands every stored event to p.
func WithPublisher(p Publisher) FeedOption {
	return func(r *FeedRecorder) { r.publisher = p }
}

// NewFeedRecorder returns a recorder over store.
func NewFeedRecorder(store repository.Store, opts ...FeedOption) *FeedRecorder {
	r := &FeedRecorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry for userID. The entry is stored before it is
// handed to the publisher; a rejected hand-off is logged and does not fail
// the call.
func (r *FeedRecorder) Record(ctx context.Context, userID uint64, eventType model.EventType, op model.Operation, entityID uint64) error {
	e := model.FeedEvent{
		UserID:    userID,
		EventType: eventType,
		Operation: op,
		EntityID:  entityID,
		Timestamp: r.now().UnixMilli(),
	}
	if err := r.store.AppendFeed(ctx, &e); err != nil {
		return storeErr(err, EntityUser, userID)
	}
	metrics.FeedEvents.WithLabelValues(string(eventType), string(op)).Inc()

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, e); err != nil {
			logging.Warn().Err(err).Uint64("event_id", e.EventID).Msg("feed event publish failed")
		}
	}
	return nil
}

// Feed returns a user's entries in chronological order.
func (r *FeedRecorder) Feed(ctx context.Context, userID uint64) ([]model.FeedEvent, error) {
	ok, err := r.store.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(EntityUser, userID)
	}
	return r.store.ListFeed(ctx, userID)
}
