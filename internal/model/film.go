package model

import (
	"sort"
	"time"
)

// FirstFilmDate is the earliest accepted release date (the Lumière
// brothers' first public screening).
var FirstFilmDate = NewDate(1895, time.December, 28)

// MaxDescriptionLength bounds Film.Description.
const MaxDescriptionLength = 200

// Genre is an entry of the fixed genre catalogue.
type Genre struct {
	ID   uint64 `json:"id"`
	Name string `json:"name,omitempty"`
}

// Rating is the single-valued MPA classification of a film.
type Rating struct {
	ID   uint64 `json:"id"`
	Name string `json:"name,omitempty"`
}

// Director is a person credited on films.
type Director struct {
	ID   uint64 `json:"id"`
	Name string `json:"name" validate:"required"`
}

// Film is a catalogue entry. LikedBy is the set of user ids that liked the
// film; it is materialised from the likes table on every read.
type Film struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"name" validate:"required"`
	Description string     `json:"description" validate:"max=200"`
	ReleaseDate Date       `json:"releaseDate"`
	Duration    int        `json:"duration" validate:"gt=0"`
	Rating      Rating     `json:"mpa"`
	Genres      []Genre    `json:"genres"`
	Directors   []Director `json:"directors"`
	LikedBy     []uint64   `json:"likes"`
}

// Likes returns the size of the LikedBy set.
func (f Film) Likes() int { return len(f.LikedBy) }

// HasGenre reports whether the film carries the genre.
func (f Film) HasGenre(genreID uint64) bool {
	for _, g := range f.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

// NormalizeGenres removes duplicate genres and orders the rest by id.
func NormalizeGenres(genres []Genre) []Genre {
	seen := make(map[uint64]struct{}, len(genres))
	out := make([]Genre, 0, len(genres))
	for _, g := range genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NormalizeDirectors removes duplicate directors keeping the first credit.
func NormalizeDirectors(directors []Director) []Director {
	seen := make(map[uint64]struct{}, len(directors))
	out := make([]Director, 0, len(directors))
	for _, d := range directors {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
