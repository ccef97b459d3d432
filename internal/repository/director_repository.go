package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/filmorate/internal/model"
)

// DirectorRepo handles CRUD operations for directors.
type DirectorRepo struct {
	db *sql.DB
}

// NewDirectorRepo constructs a DirectorRepo with the provided DB handle.
func NewDirectorRepo(db *sql.DB) *DirectorRepo {
	return &DirectorRepo{db: db}
}

// CreateDirector inserts d and populates its ID.
func (r *DirectorRepo) CreateDirector(ctx context.Context, d *model.Director) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO directors (name) VALUES (?)", d.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// UpdateDirector renames an existing director.
func (r *DirectorRepo) UpdateDirector(ctx context.Context, d *model.Director) error {
	res, err := r.db.ExecContext(ctx, "UPDATE directors SET name = ? WHERE id = ?", d.Name, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDirector fetches a director by id.
func (r *DirectorRepo) GetDirector(ctx context.Context, id uint64) (model.Director, error) {
	var d model.Director
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM directors WHERE id = ?", id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Director{}, ErrNotFound
	}
	return d, err
}

// ListDirectors returns all directors ordered by id.
func (r *DirectorRepo) ListDirectors(ctx context.Context) ([]model.Director, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM directors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Director{}
	for rows.Next() {
		var d model.Director
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDirector removes a director and its film credits.
func (r *DirectorRepo) DeleteDirector(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM directors WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DirectorExists reports whether a director row exists.
func (r *DirectorRepo) DirectorExists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM directors WHERE id = ? LIMIT 1", id)
}
