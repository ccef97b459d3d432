package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/validation"
)

// Catalog is the CRUD layer for users, films, directors and the genre and
// rating dictionaries. It enforces the entity rules the store does not.
type Catalog struct {
	store repository.Store
	now   func() time.Time
}

// NewCatalog returns a Catalog over store.
func NewCatalog(store repository.Store) *Catalog {
	return &Catalog{store: store, now: time.Now}
}

// ----- users -----

func (c *Catalog) checkUser(u *model.User) error {
	u.Email = strings.TrimSpace(u.Email)
	if err := validation.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(u.Login) == "" || strings.ContainsAny(u.Login, " \t\n") {
		return validationf("login must be non-empty and contain no spaces")
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}
	if !u.Birthday.IsZero() && u.Birthday.After(c.now()) {
		return validationf("birthday %s is in the future", u.Birthday)
	}
	return nil
}

func conflictErr(err error, what string) error {
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}

// CreateUser validates and stores a new user.
func (c *Catalog) CreateUser(ctx context.Context, u *model.User) error {
	if err := c.checkUser(u); err != nil {
		return err
	}
	if err := c.store.CreateUser(ctx, u); err != nil {
		return conflictErr(err, "login "+u.Login+" is already taken")
	}
	logging.Debug().Uint64("user_id", u.ID).Str("login", u.Login).Msg("user created")
	return nil
}

// UpdateUser validates and overwrites an existing user.
func (c *Catalog) UpdateUser(ctx context.Context, u *model.User) error {
	if err := c.checkUser(u); err != nil {
		return err
	}
	if err := c.store.UpdateUser(ctx, u); err != nil {
		return conflictErr(storeErr(err, EntityUser, u.ID), "login "+u.Login+" is already taken")
	}
	return nil
}

// GetUser returns one user with its friend sets.
func (c *Catalog) GetUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := c.store.GetUser(ctx, id)
	if err != nil {
		return model.User{}, storeErr(err, EntityUser, id)
	}
	return u, nil
}

// ListUsers returns all users ordered by id.
func (c *Catalog) ListUsers(ctx context.Context) ([]model.User, error) {
	return c.store.ListUsers(ctx)
}

// DeleteUser removes a user with its likes, friendships, reviews, votes and
// feed.
func (c *Catalog) DeleteUser(ctx context.Context, id uint64) error {
	if err := c.store.DeleteUser(ctx, id); err != nil {
		return storeErr(err, EntityUser, id)
	}
	logging.Debug().Uint64("user_id", id).Msg("user deleted")
	return nil
}

// ----- films -----

func (c *Catalog) checkFilm(ctx context.Context, f *model.Film) error {
	if strings.TrimSpace(f.Title) == "" {
		return validationf("film name must not be blank")
	}
	if utf8.RuneCountInString(f.Description) > model.MaxDescriptionLength {
		return validationf("description is longer than %d characters", model.MaxDescriptionLength)
	}
	if f.ReleaseDate.IsZero() {
		return validationf("release date is required")
	}
	if f.ReleaseDate.Before(model.FirstFilmDate.Time) {
		return validationf("release date %s is before %s", f.ReleaseDate, model.FirstFilmDate)
	}
	if f.Duration <= 0 {
		return validationf("duration must be positive")
	}

	if _, err := c.store.GetRating(ctx, f.Rating.ID); err != nil {
		return storeErr(err, EntityRating, f.Rating.ID)
	}
	for _, g := range f.Genres {
		if _, err := c.store.GetGenre(ctx, g.ID); err != nil {
			return storeErr(err, EntityGenre, g.ID)
		}
	}
	for _, d := range f.Directors {
		ok, err := c.store.DirectorExists(ctx, d.ID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(EntityDirector, d.ID)
		}
	}
	return nil
}

// CreateFilm validates and stores a new film; f is reloaded with resolved
// names.
func (c *Catalog) CreateFilm(ctx context.Context, f *model.Film) error {
	if err := c.checkFilm(ctx, f); err != nil {
		return err
	}
	if err := c.store.CreateFilm(ctx, f); err != nil {
		return err
	}
	return c.reloadFilm(ctx, f)
}

// UpdateFilm validates and overwrites an existing film. Likes are kept.
func (c *Catalog) UpdateFilm(ctx context.Context, f *model.Film) error {
	if err := c.checkFilm(ctx, f); err != nil {
		return err
	}
	if err := c.store.UpdateFilm(ctx, f); err != nil {
		return storeErr(err, EntityFilm, f.ID)
	}
	return c.reloadFilm(ctx, f)
}

func (c *Catalog) reloadFilm(ctx context.Context, f *model.Film) error {
	stored, err := c.store.GetFilm(ctx, f.ID)
	if err != nil {
		return storeErr(err, EntityFilm, f.ID)
	}
	*f = stored
	return nil
}

// GetFilm returns one film.
func (c *Catalog) GetFilm(ctx context.Context, id uint64) (model.Film, error) {
	f, err := c.store.GetFilm(ctx, id)
	if err != nil {
		return model.Film{}, storeErr(err, EntityFilm, id)
	}
	return f, nil
}

// ListFilms returns all films ordered by id.
func (c *Catalog) ListFilms(ctx context.Context) ([]model.Film, error) {
	return c.store.ListFilms(ctx)
}

// DeleteFilm removes a film with its likes and reviews.
func (c *Catalog) DeleteFilm(ctx context.Context, id uint64) error {
	if err := c.store.DeleteFilm(ctx, id); err != nil {
		return storeErr(err, EntityFilm, id)
	}
	return nil
}

// ----- directors -----

func checkDirector(d *model.Director) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return validationf("director name must not be blank")
	}
	return nil
}

func (c *Catalog) CreateDirector(ctx context.Context, d *model.Director) error {
	if err := checkDirector(d); err != nil {
		return err
	}
	return c.store.CreateDirector(ctx, d)
}

func (c *Catalog) UpdateDirector(ctx context.Context, d *model.Director) error {
	if err := checkDirector(d); err != nil {
		return err
	}
	if err := c.store.UpdateDirector(ctx, d); err != nil {
		return storeErr(err, EntityDirector, d.ID)
	}
	return nil
}

func (c *Catalog) GetDirector(ctx context.Context, id uint64) (model.Director, error) {
	d, err := c.store.GetDirector(ctx, id)
	if err != nil {
		return model.Director{}, storeErr(err, EntityDirector, id)
	}
	return d, nil
}

func (c *Catalog) ListDirectors(ctx context.Context) ([]model.Director, error) {
	return c.store.ListDirectors(ctx)
}

func (c *Catalog) DeleteDirector(ctx context.Context, id uint64) error {
	if err := c.store.DeleteDirector(ctx, id); err != nil {
		return storeErr(err, EntityDirector, id)
	}
	return nil
}

// ----- dictionaries -----

func (c *Catalog) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return c.store.ListGenres(ctx)
}

func (c *Catalog) GetGenre(ctx context.Context, id uint64) (model.Genre, error) {
	g, err := c.store.GetGenre(ctx, id)
	if err != nil {
		return model.Genre{}, storeErr(err, EntityGenre, id)
	}
	return g, nil
}

func (c *Catalog) ListRatings(ctx context.Context) ([]model.Rating, error) {
	return c.store.ListRatings(ctx)
}

func (c *Catalog) GetRating(ctx context.Context, id uint64) (model.Rating, error) {
	r, err := c.store.GetRating(ctx, id)
	if err != nil {
		return model.Rating{}, storeErr(err, EntityRating, id)
	}
	return r, nil
}
