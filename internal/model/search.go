package model

import (
	"fmt"
	"strings"
)

// SearchBy names a field matched by film search.
type SearchBy string

const (
	SearchByTitle    SearchBy = "title"
	SearchByDirector SearchBy = "director"
)

// ParseSearchBy splits a comma separated criteria list such as
// "title,director". Unknown names are rejected.
func ParseSearchBy(raw string) ([]SearchBy, error) {
	var out []SearchBy
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		switch SearchBy(p) {
		case SearchByTitle, SearchByDirector:
			out = append(out, SearchBy(p))
		case "":
		default:
			return nil, fmt.Errorf("unknown search field %q", p)
		}
	}
	return out, nil
}

// DirectorSort selects the ordering of a director's filmography.
type DirectorSort string

const (
	SortByYear  DirectorSort = "year"
	SortByLikes DirectorSort = "likes"
)
