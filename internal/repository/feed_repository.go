package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/filmorate/internal/model"
)

// FeedRepo is the MySQL-backed activity log.
type FeedRepo struct {
	db *sql.DB
}

// NewFeedRepo constructs a FeedRepo with the provided DB handle.
func NewFeedRepo(db *sql.DB) *FeedRepo {
	return &FeedRepo{db: db}
}

// AppendFeed inserts e and populates its EventID.
func (r *FeedRepo) AppendFeed(ctx context.Context, e *model.FeedEvent) error {
	const q = "INSERT INTO feed (user_id, event_type, operation, entity_id, created_ms) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, e.UserID, string(e.EventType), string(e.Operation), e.EntityID, e.Timestamp)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.EventID = uint64(id)
	return nil
}

// ListFeed returns a user's feed in chronological order.
func (r *FeedRepo) ListFeed(ctx context.Context, userID uint64) ([]model.FeedEvent, error) {
	const q = `SELECT id, user_id, event_type, operation, entity_id, created_ms
	           FROM feed WHERE user_id = ? ORDER BY created_ms, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FeedEvent{}
	for rows.Next() {
		var e model.FeedEvent
		var eventType, op string
		if err := rows.Scan(&e.EventID, &e.UserID, &eventType, &op, &e.EntityID, &e.Timestamp); err != nil {
			return nil, err
		}
		e.EventType = model.EventType(eventType)
		e.Operation = model.Operation(op)
		out = append(out, e)
	}
	return out, rows.Err()
}
