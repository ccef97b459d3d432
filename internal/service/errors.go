// Package service holds the social graph and recommendation core: like and
// friendship mutations, the activity feed, popularity ranking,
// recommendations, search and review scoring, plus the catalogue CRUD the
// HTTP layer needs. Every operation reads from and writes to a
// repository.Store and reports failures with the errors below.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/filmorate/internal/repository"
)

var (
	// ErrEntityNotFound matches every *NotFoundError.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidParameter reports a bad argument such as a non-positive limit.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDuplicateLike is returned by AddLike in strict mode only.
	ErrDuplicateLike = errors.New("like already exists")
	// ErrLikeNotFound is returned when removing a like that does not exist.
	ErrLikeNotFound = errors.New("like not found")
	// ErrReviewNotFound matches a *NotFoundError for a review.
	ErrReviewNotFound = errors.New("review not found")
	// ErrValidation reports an entity that breaks a catalogue rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict reports a uniqueness violation, e.g. a taken login.
	ErrConflict = errors.New("conflict")
)

// Entity names used in NotFoundError.
const (
	EntityUser     = "user"
	EntityFilm     = "film"
	EntityReview   = "review"
	EntityDirector = "director"
	EntityGenre    = "genre"
	EntityRating   = "rating"
)

// NotFoundError names the entity and id that could not be resolved.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// Is lets errors.Is match ErrEntityNotFound, and ErrReviewNotFound for
// reviews.
func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrEntityNotFound:
		return true
	case ErrReviewNotFound:
		return e.Entity == EntityReview
	}
	return false
}

func notFound(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidLike(kind error, userID, filmID uint64) error {
	return fmt.Errorf("%w: user %d, film %d", kind, userID, filmID)
}

// storeErr turns repository.ErrNotFound into a NotFoundError for the given
// entity and returns any other error unchanged.
func storeErr(err error, entity string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}
