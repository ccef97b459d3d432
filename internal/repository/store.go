package repository

import (
	"context"

	"github.com/iliyamo/filmorate/internal/model"
)

// UserStore persists users. Reads materialise Friends and FriendRequests
// from the friendship links, both ordered by ascending id.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uint64) (model.User, error)
	GetUsers(ctx context.Context, ids []uint64) ([]model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	UserExists(ctx context.Context, id uint64) (bool, error)
}

// FilmStore persists films. Reads materialise LikedBy from the likes table
// and return genres ordered by id and directors in credit order. List
// methods return films ordered by ascending id.
type FilmStore interface {
	CreateFilm(ctx context.Context, f *model.Film) error
	UpdateFilm(ctx context.Context, f *model.Film) error
	GetFilm(ctx context.Context, id uint64) (model.Film, error)
	GetFilms(ctx context.Context, ids []uint64) ([]model.Film, error)
	ListFilms(ctx context.Context) ([]model.Film, error)
	ListFilmsByDirector(ctx context.Context, directorID uint64) ([]model.Film, error)
	DeleteFilm(ctx context.Context, id uint64) error
	FilmExists(ctx context.Context, id uint64) (bool, error)
}

// CatalogStore serves the fixed genre and rating dictionaries.
type CatalogStore interface {
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id uint64) (model.Genre, error)
	ListRatings(ctx context.Context) ([]model.Rating, error)
	GetRating(ctx context.Context, id uint64) (model.Rating, error)
}

// DirectorStore persists directors.
type DirectorStore interface {
	CreateDirector(ctx context.Context, d *model.Director) error
	UpdateDirector(ctx context.Context, d *model.Director) error
	GetDirector(ctx context.Context, id uint64) (model.Director, error)
	ListDirectors(ctx context.Context) ([]model.Director, error)
	DeleteDirector(ctx context.Context, id uint64) error
	DirectorExists(ctx context.Context, id uint64) (bool, error)
}

// LikeStore holds the (user, film) like edges. AddLike and RemoveLike
// report whether the edge set changed.
type LikeStore interface {
	AddLike(ctx context.Context, userID, filmID uint64) (bool, error)
	RemoveLike(ctx context.Context, userID, filmID uint64) (bool, error)
	LikedFilms(ctx context.Context, userID uint64) ([]uint64, error)
	AllLikes(ctx context.Context) (map[uint64][]uint64, error)
}

// FriendStore holds directed friendship links. A link is stored on the
// owner's side; PutFriendLink overwrites the status of an existing link and
// DeleteFriendLink is a no-op when the link is absent.
type FriendStore interface {
	PutFriendLink(ctx context.Context, userID, otherID uint64, status model.FriendStatus) error
	DeleteFriendLink(ctx context.Context, userID, otherID uint64) error
}

// ReviewStore persists reviews and their votes. PutReviewVote replaces any
// vote the user already cast on the review; DeleteReviewVote removes the
// vote only when its polarity matches and reports whether it did.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *model.Review) error
	UpdateReview(ctx context.Context, r *model.Review) error
	GetReview(ctx context.Context, id uint64) (model.Review, error)
	ListReviews(ctx context.Context, filmID uint64) ([]model.Review, error)
	DeleteReview(ctx context.Context, id uint64) error
	ReviewExists(ctx context.Context, id uint64) (bool, error)
	PutReviewVote(ctx context.Context, v model.ReviewVote) error
	DeleteReviewVote(ctx context.Context, v model.ReviewVote) (bool, error)
	ReviewVotes(ctx context.Context, reviewID uint64) ([]model.ReviewVote, error)
	SetUseful(ctx context.Context, reviewID uint64, useful int) error
}

// FeedStore is the append-only activity log. AppendFeed assigns EventID;
// ListFeed returns a user's entries ordered by timestamp then event id.
type FeedStore interface {
	AppendFeed(ctx context.Context, e *model.FeedEvent) error
	ListFeed(ctx context.Context, userID uint64) ([]model.FeedEvent, error)
}

// Store is the full entity store contract. Every method is atomic with
// respect to the entities it touches; deleting a user or film cascades to
// the edges and feed entries that reference it.
type Store interface {
	UserStore
	FilmStore
	CatalogStore
	DirectorStore
	LikeStore
	FriendStore
	ReviewStore
	FeedStore
}
