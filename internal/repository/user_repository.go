package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/filmorate/internal/model"
)

// UserRepo stores users and their friendship links in MySQL.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = "id, email, login, name, birthday"

// CreateUser inserts u and populates its ID.
func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = "INSERT INTO users (email, login, name, birthday) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, u.Email, u.Login, u.Name, nullableDate(u.Birthday))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.Friends = []uint64{}
	u.FriendRequests = nil
	return nil
}

// UpdateUser overwrites the scalar fields of an existing user. Friend links
// are left untouched and reloaded into u.
func (r *UserRepo) UpdateUser(ctx context.Context, u *model.User) error {
	const q = "UPDATE users SET email = ?, login = ?, name = ?, birthday = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, u.Email, u.Login, u.Name, nullableDate(u.Birthday), u.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	links, err := r.links(ctx, []uint64{u.ID})
	if err != nil {
		return err
	}
	applyLinks(u, links[u.ID])
	return nil
}

// GetUser fetches a user by id with its friendship sets.
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE id = ?"
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.Login, &u.Name, &u.Birthday); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	links, err := r.links(ctx, []uint64{id})
	if err != nil {
		return model.User{}, err
	}
	applyLinks(&u, links[id])
	return u, nil
}

// GetUsers returns the users with the given ids ordered by id. Unknown ids
// are skipped.
func (r *UserRepo) GetUsers(ctx context.Context, ids []uint64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	q := "SELECT " + userColumns + " FROM users WHERE id IN (" + placeholders(len(ids)) + ") ORDER BY id"
	return r.queryUsers(ctx, q, ids, uint64Args(ids)...)
}

// ListUsers returns every user ordered by id.
func (r *UserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY id", nil)
}

func (r *UserRepo) queryUsers(ctx context.Context, q string, ids []uint64, args ...any) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0, len(ids))
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Login, &u.Name, &u.Birthday); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// ids == nil means every user was selected, so load every link.
	links, err := r.links(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		applyLinks(&out[i], links[out[i].ID])
	}
	return out, nil
}

// DeleteUser removes a user. Likes, links, reviews, votes and feed entries
// go with it through ON DELETE CASCADE; the scores of reviews the user voted
// on are adjusted first in the same transaction.
func (r *UserRepo) DeleteUser(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const adjust = `UPDATE reviews r JOIN review_votes v ON v.review_id = r.id
	                SET r.useful = r.useful - IF(v.is_like, 1, -1)
	                WHERE v.user_id = ?`
	if _, err = tx.ExecContext(ctx, adjust, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserExists reports whether a user row exists.
func (r *UserRepo) UserExists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM users WHERE id = ? LIMIT 1", id)
}

// PutFriendLink upserts the directed link userID -> otherID.
func (r *UserRepo) PutFriendLink(ctx context.Context, userID, otherID uint64, status model.FriendStatus) error {
	const q = `INSERT INTO friendships (user_id, other_id, status) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE status = VALUES(status)`
	if _, err := r.db.ExecContext(ctx, q, userID, otherID, string(status)); err != nil {
		return translate(err)
	}
	return nil
}

// DeleteFriendLink removes the directed link userID -> otherID if present.
func (r *UserRepo) DeleteFriendLink(ctx context.Context, userID, otherID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM friendships WHERE user_id = ? AND other_id = ?", userID, otherID)
	return err
}

type friendLink struct {
	otherID uint64
	status  model.FriendStatus
}

// links loads friendship links owned by the given users, or by every user
// when ids is nil, grouped by owner and ordered by other_id.
func (r *UserRepo) links(ctx context.Context, ids []uint64) (map[uint64][]friendLink, error) {
	q := "SELECT user_id, other_id, status FROM friendships"
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return map[uint64][]friendLink{}, nil
		}
		q += " WHERE user_id IN (" + placeholders(len(ids)) + ")"
		args = uint64Args(ids)
	}
	q += " ORDER BY user_id, other_id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]friendLink)
	for rows.Next() {
		var owner uint64
		var l friendLink
		var status string
		if err := rows.Scan(&owner, &l.otherID, &status); err != nil {
			return nil, err
		}
		l.status = model.FriendStatus(status)
		out[owner] = append(out[owner], l)
	}
	return out, rows.Err()
}

func applyLinks(u *model.User, links []friendLink) {
	u.Friends = []uint64{}
	u.FriendRequests = nil
	for _, l := range links {
		switch l.status {
		case model.FriendConfirmed:
			u.Friends = append(u.Friends, l.otherID)
		case model.FriendRequest:
			u.FriendRequests = append(u.FriendRequests, l.otherID)
		}
	}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func uint64Args(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func exists(ctx context.Context, db *sql.DB, q string, args ...any) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, q, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nullableDate(d model.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time
}
