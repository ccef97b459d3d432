package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/filmorate/internal/model"
)

// FilmRepo stores films, their genre and director credits, the like edges
// and the genre/rating dictionaries in MySQL.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the provided DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

const filmSelect = `SELECT f.id, f.title, f.description, f.release_date, f.duration, r.id, r.name
	FROM films f JOIN ratings r ON r.id = f.rating_id`

// CreateFilm inserts f with its credits and populates its ID.
func (r *FilmRepo) CreateFilm(ctx context.Context, f *model.Film) (err error) {
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

	const q = "INSERT INTO films (title, description, release_date, duration, rating_id) VALUES (?, ?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, q, f.Title, f.Description, f.ReleaseDate.Time, f.Duration, f.Rating.ID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	if err = writeCredits(ctx, tx, f); err != nil {
		return err
	}
	f.LikedBy = []uint64{}
	return nil
}

// UpdateFilm overwrites an existing film and replaces its credits. Likes
// are kept and reloaded into f.
func (r *FilmRepo) UpdateFilm(ctx context.Context, f *model.Film) (err error) {
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

	const q = `UPDATE films SET title = ?, description = ?, release_date = ?, duration = ?, rating_id = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, f.Title, f.Description, f.ReleaseDate.Time, f.Duration, f.Rating.ID, f.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM film_genres WHERE film_id = ?", f.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM film_directors WHERE film_id = ?", f.ID); err != nil {
		return err
	}
	if err = writeCredits(ctx, tx, f); err != nil {
		return err
	}
	likes, err := likesByFilm(ctx, tx, []uint64{f.ID})
	if err != nil {
		return err
	}
	f.LikedBy = nonNil(likes[f.ID])
	return nil
}

func writeCredits(ctx context.Context, tx *sql.Tx, f *model.Film) error {
	f.Genres = model.NormalizeGenres(f.Genres)
	for _, g := range f.Genres {
		if _, err := tx.ExecContext(ctx, "INSERT INTO film_genres (film_id, genre_id) VALUES (?, ?)", f.ID, g.ID); err != nil {
			return translate(err)
		}
	}
	f.Directors = model.NormalizeDirectors(f.Directors)
	for i, d := range f.Directors {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO film_directors (film_id, director_id, position) VALUES (?, ?, ?)", f.ID, d.ID, i); err != nil {
			return translate(err)
		}
	}
	return nil
}

// GetFilm fetches one film with genres, directors and likes.
func (r *FilmRepo) GetFilm(ctx context.Context, id uint64) (model.Film, error) {
	films, err := r.queryFilms(ctx, filmSelect+" WHERE f.id = ?", id)
	if err != nil {
		return model.Film{}, err
	}
	if len(films) == 0 {
		return model.Film{}, ErrNotFound
	}
	return films[0], nil
}

// GetFilms returns the films with the given ids ordered by id. Unknown ids
// are skipped.
func (r *FilmRepo) GetFilms(ctx context.Context, ids []uint64) ([]model.Film, error) {
	if len(ids) == 0 {
		return []model.Film{}, nil
	}
	q := filmSelect + " WHERE f.id IN (" + placeholders(len(ids)) + ") ORDER BY f.id"
	return r.queryFilms(ctx, q, uint64Args(ids)...)
}

// ListFilms returns every film ordered by id.
func (r *FilmRepo) ListFilms(ctx context.Context) ([]model.Film, error) {
	return r.queryFilms(ctx, filmSelect+" ORDER BY f.id")
}

// ListFilmsByDirector returns the films credited to a director ordered by id.
func (r *FilmRepo) ListFilmsByDirector(ctx context.Context, directorID uint64) ([]model.Film, error) {
	q := filmSelect + " JOIN film_directors fd ON fd.film_id = f.id WHERE fd.director_id = ? ORDER BY f.id"
	return r.queryFilms(ctx, q, directorID)
}

func (r *FilmRepo) queryFilms(ctx context.Context, q string, args ...any) ([]model.Film, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.ReleaseDate, &f.Duration,
			&f.Rating.ID, &f.Rating.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// hydrate loads genres, directors and likes for films in three queries.
func (r *FilmRepo) hydrate(ctx context.Context, films []model.Film) error {
	if len(films) == 0 {
		return nil
	}
	ids := make([]uint64, len(films))
	for i, f := range films {
		ids[i] = f.ID
	}
	in := placeholders(len(ids))
	args := uint64Args(ids)

	genres := make(map[uint64][]model.Genre)
	rows, err := r.db.QueryContext(ctx, `SELECT fg.film_id, g.id, g.name FROM film_genres fg
		JOIN genres g ON g.id = fg.genre_id WHERE fg.film_id IN (`+in+`) ORDER BY fg.film_id, g.id`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var filmID uint64
		var g model.Genre
		if err := rows.Scan(&filmID, &g.ID, &g.Name); err != nil {
			rows.Close()
			return err
		}
		genres[filmID] = append(genres[filmID], g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	directors := make(map[uint64][]model.Director)
	rows, err = r.db.QueryContext(ctx, `SELECT fd.film_id, d.id, d.name FROM film_directors fd
		JOIN directors d ON d.id = fd.director_id WHERE fd.film_id IN (`+in+`) ORDER BY fd.film_id, fd.position`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var filmID uint64
		var d model.Director
		if err := rows.Scan(&filmID, &d.ID, &d.Name); err != nil {
			rows.Close()
			return err
		}
		directors[filmID] = append(directors[filmID], d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	likes, err := likesByFilm(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range films {
		id := films[i].ID
		films[i].Genres = nonNil(genres[id])
		films[i].Directors = nonNil(directors[id])
		films[i].LikedBy = nonNil(likes[id])
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func likesByFilm(ctx context.Context, db queryer, ids []uint64) (map[uint64][]uint64, error) {
	q := "SELECT film_id, user_id FROM likes WHERE film_id IN (" + placeholders(len(ids)) + ") ORDER BY film_id, user_id"
	rows, err := db.QueryContext(ctx, q, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]uint64)
	for rows.Next() {
		var filmID, userID uint64
		if err := rows.Scan(&filmID, &userID); err != nil {
			return nil, err
		}
		out[filmID] = append(out[filmID], userID)
	}
	return out, rows.Err()
}

// DeleteFilm removes a film; credits, likes and reviews cascade.
func (r *FilmRepo) DeleteFilm(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM films WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FilmExists reports whether a film row exists.
func (r *FilmRepo) FilmExists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM films WHERE id = ? LIMIT 1", id)
}

// AddLike records the like edge. A duplicate edge is reported as
// (false, nil); a missing user or film as ErrNotFound.
func (r *FilmRepo) AddLike(ctx context.Context, userID, filmID uint64) (bool, error) {
	_, err := r.db.ExecContext(ctx, "INSERT INTO likes (user_id, film_id) VALUES (?, ?)", userID, filmID)
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, translate(err)
	}
	return true, nil
}

// RemoveLike deletes the like edge and reports whether it existed.
func (r *FilmRepo) RemoveLike(ctx context.Context, userID, filmID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM likes WHERE user_id = ? AND film_id = ?", userID, filmID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LikedFilms returns the ids of films a user liked in ascending order.
func (r *FilmRepo) LikedFilms(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT film_id FROM likes WHERE user_id = ? ORDER BY film_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AllLikes returns user id -> liked film ids for every user with a like.
func (r *FilmRepo) AllLikes(ctx context.Context) (map[uint64][]uint64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, film_id FROM likes ORDER BY user_id, film_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]uint64)
	for rows.Next() {
		var userID, filmID uint64
		if err := rows.Scan(&userID, &filmID); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], filmID)
	}
	return out, rows.Err()
}

// ListGenres returns the genre dictionary ordered by id.
func (r *FilmRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGenre fetches one genre.
func (r *FilmRepo) GetGenre(ctx context.Context, id uint64) (model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Genre{}, ErrNotFound
	}
	return g, err
}

// ListRatings returns the rating dictionary ordered by id.
func (r *FilmRepo) ListRatings(ctx context.Context) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM ratings ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Rating{}
	for rows.Next() {
		var m model.Rating
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetRating fetches one rating.
func (r *FilmRepo) GetRating(ctx context.Context, id uint64) (model.Rating, error) {
	var m model.Rating
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM ratings WHERE id = ?", id).Scan(&m.ID, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rating{}, ErrNotFound
	}
	return m, err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
