package service

import (
	"context"
	"strings"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Searcher finds films by case-insensitive substring over titles and
// director names.
type Searcher struct {
	store repository.Store
}

// NewSearcher returns a Searcher over store.
func NewSearcher(store repository.Store) *Searcher {
	return &Searcher{store: store}
}

// Search returns every film matching query on at least one of the given
// fields, each film once, most liked first.
func (s *Searcher) Search(ctx context.Context, query string, by []model.SearchBy) ([]model.Film, error) {
	var byTitle, byDirector bool
	for _, b := range by {
		switch b {
		case model.SearchByTitle:
			byTitle = true
		case model.SearchByDirector:
			byDirector = true
		default:
			return nil, invalidf("unknown search field %q", b)
		}
	}
	if !byTitle && !byDirector {
		return []model.Film{}, nil
	}

	films, err := s.store.ListFilms(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := []model.Film{}
	for _, f := range films {
		if (byTitle && titleMatches(f, needle)) || (byDirector && directorMatches(f, needle)) {
			out = append(out, f)
		}
	}
	SortByLikes(out)
	return out, nil
}

func titleMatches(f model.Film, needle string) bool {
	return strings.Contains(strings.ToLower(f.Title), needle)
}

func directorMatches(f model.Film, needle string) bool {
	for _, d := range f.Directors {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return true
		}
	}
	return false
}
