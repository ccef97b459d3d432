package service

import (
	"context"
	"sort"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Ranking orders films by popularity.
type Ranking struct {
	store repository.Store
}

// NewRanking returns a Ranking over store.
func NewRanking(store repository.Store) *Ranking {
	return &Ranking{store: store}
}

// SortByLikes orders films by descending like count, then ascending id.
func SortByLikes(films []model.Film) {
	sort.SliceStable(films, func(i, j int) bool {
		if films[i].Likes() != films[j].Likes() {
			return films[i].Likes() > films[j].Likes()
		}
		return films[i].ID < films[j].ID
	})
}

// PopularFilms returns at most limit films, most liked first. genreID and
// year filter the candidates when non-zero.
func (r *Ranking) PopularFilms(ctx context.Context, limit int, genreID uint64, year int) ([]model.Film, error) {
	if limit <= 0 {
		return nil, invalidf("count must be positive, got %d", limit)
	}
	all, err := r.store.ListFilms(ctx)
	if err != nil {
		return nil, err
	}
	films := all[:0]
	for _, f := range all {
		if genreID != 0 && !f.HasGenre(genreID) {
			continue
		}
		if year != 0 && f.ReleaseDate.Year() != year {
			continue
		}
		films = append(films, f)
	}
	SortByLikes(films)
	if len(films) > limit {
		films = films[:limit]
	}
	return films, nil
}

// CommonFilms returns the films liked by both users, most liked first.
func (r *Ranking) CommonFilms(ctx context.Context, userID, friendID uint64) ([]model.Film, error) {
	for _, id := range []uint64{userID, friendID} {
		ok, err := r.store.UserExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(EntityUser, id)
		}
	}
	mine, err := r.store.LikedFilms(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := r.store.LikedFilms(ctx, friendID)
	if err != nil {
		return nil, err
	}
	common := intersect(mine, theirs)
	if len(common) == 0 {
		return []model.Film{}, nil
	}
	films, err := r.store.GetFilms(ctx, common)
	if err != nil {
		return nil, err
	}
	SortByLikes(films)
	return films, nil
}

// DirectorFilms returns a director's films ordered by release date for
// SortByYear or by likes for SortByLikes.
func (r *Ranking) DirectorFilms(ctx context.Context, directorID uint64, sortBy model.DirectorSort) ([]model.Film, error) {
	if sortBy != model.SortByYear && sortBy != model.SortByLikes {
		return nil, invalidf("sortBy must be %q or %q, got %q", model.SortByYear, model.SortByLikes, sortBy)
	}
	ok, err := r.store.DirectorExists(ctx, directorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(EntityDirector, directorID)
	}
	films, err := r.store.ListFilmsByDirector(ctx, directorID)
	if err != nil {
		return nil, err
	}
	if sortBy == model.SortByLikes {
		SortByLikes(films)
		return films, nil
	}
	sort.SliceStable(films, func(i, j int) bool {
		a, b := films[i].ReleaseDate, films[j].ReleaseDate
		if !a.Equal(b.Time) {
			return a.Before(b.Time)
		}
		return films[i].ID < films[j].ID
	})
	return films, nil
}
