package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/filmorate/internal/model"
)

// ReviewRepo stores reviews and review votes in MySQL.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the provided DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

const reviewColumns = "id, content, is_positive, user_id, film_id, useful"

func scanReview(row interface{ Scan(...any) error }) (model.Review, error) {
	var rv model.Review
	var positive bool
	if err := row.Scan(&rv.ID, &rv.Content, &positive, &rv.UserID, &rv.FilmID, &rv.Useful); err != nil {
		return model.Review{}, err
	}
	rv.IsPositive = &positive
	return rv, nil
}

// CreateReview inserts rv with a zero usefulness and populates its ID.
func (r *ReviewRepo) CreateReview(ctx context.Context, rv *model.Review) error {
	const q = "INSERT INTO reviews (content, is_positive, user_id, film_id, useful) VALUES (?, ?, ?, ?, 0)"
	res, err := r.db.ExecContext(ctx, q, rv.Content, rv.Positive(), rv.UserID, rv.FilmID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	rv.Useful = 0
	return nil
}

// UpdateReview changes content and polarity. Author, film and usefulness are
// kept; rv is refreshed from the stored row.
func (r *ReviewRepo) UpdateReview(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reviews SET content = ?, is_positive = ? WHERE id = ?",
		rv.Content, rv.Positive(), rv.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	stored, err := r.GetReview(ctx, rv.ID)
	if err != nil {
		return err
	}
	*rv = stored
	return nil
}

// GetReview fetches a review by id.
func (r *ReviewRepo) GetReview(ctx context.Context, id uint64) (model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rv, err
}

// ListReviews returns the reviews of one film, or of every film when filmID
// is 0, ordered by id.
func (r *ReviewRepo) ListReviews(ctx context.Context, filmID uint64) ([]model.Review, error) {
	q := "SELECT " + reviewColumns + " FROM reviews"
	var args []any
	if filmID != 0 {
		q += " WHERE film_id = ?"
		args = append(args, filmID)
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// DeleteReview removes a review and its votes.
func (r *ReviewRepo) DeleteReview(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewExists reports whether a review row exists.
func (r *ReviewRepo) ReviewExists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM reviews WHERE id = ? LIMIT 1", id)
}

// PutReviewVote records v, replacing the user's previous vote on the review
// in the same statement.
func (r *ReviewRepo) PutReviewVote(ctx context.Context, v model.ReviewVote) error {
	const q = `INSERT INTO review_votes (review_id, user_id, is_like) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE is_like = VALUES(is_like)`
	if _, err := r.db.ExecContext(ctx, q, v.ReviewID, v.UserID, v.Like); err != nil {
		return translate(err)
	}
	return nil
}

// DeleteReviewVote removes the user's vote when its polarity matches v.Like.
func (r *ReviewRepo) DeleteReviewVote(ctx context.Context, v model.ReviewVote) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM review_votes WHERE review_id = ? AND user_id = ? AND is_like = ?", v.ReviewID, v.UserID, v.Like)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReviewVotes returns every vote on a review ordered by user id.
func (r *ReviewRepo) ReviewVotes(ctx context.Context, reviewID uint64) ([]model.ReviewVote, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT review_id, user_id, is_like FROM review_votes WHERE review_id = ? ORDER BY user_id", reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReviewVote{}
	for rows.Next() {
		var v model.ReviewVote
		if err := rows.Scan(&v.ReviewID, &v.UserID, &v.Like); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetUseful persists the derived usefulness score of a review.
func (r *ReviewRepo) SetUseful(ctx context.Context, reviewID uint64, useful int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reviews SET useful = ? WHERE id = ?", useful, reviewID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
