// Package storetest is the conformance suite shared by every
// repository.Store backend. Backends call Run from their own tests with a
// factory that returns an empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) repository.Store

// Run executes the suite against the stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"UserLifecycle", testUserLifecycle},
		{"UserLoginConflict", testUserLoginConflict},
		{"FriendLinks", testFriendLinks},
		{"FilmCredits", testFilmCredits},
		{"FilmUnknownRating", testFilmUnknownRating},
		{"Likes", testLikes},
		{"LikeUnknownEntities", testLikeUnknownEntities},
		{"ReviewVotes", testReviewVotes},
		{"ListReviewsFilter", testListReviewsFilter},
		{"FeedOrder", testFeedOrder},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"DeleteFilmCascades", testDeleteFilmCascades},
		{"Dictionaries", testDictionaries},
		{"Directors", testDirectors},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

// NewUser creates a user with the given login.
func NewUser(t *testing.T, s repository.Store, login string) model.User {
	t.Helper()
	u := model.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     login,
		Birthday: model.NewDate(1990, time.May, 17),
	}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	require.NotZero(t, u.ID)
	return u
}

// NewFilm creates a film released in the given year with rating 1.
func NewFilm(t *testing.T, s repository.Store, title string, year int, genres ...uint64) model.Film {
	t.Helper()
	f := model.Film{
		Title:       title,
		Description: title + " description",
		ReleaseDate: model.NewDate(year, time.March, 1),
		Duration:    100,
		Rating:      model.Rating{ID: 1},
	}
	for _, g := range genres {
		f.Genres = append(f.Genres, model.Genre{ID: g})
	}
	require.NoError(t, s.CreateFilm(context.Background(), &f))
	require.NotZero(t, f.ID)
	return f
}

func testUserLifecycle(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "alice")
	assert.Empty(t, u.Friends)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, u.Birthday.String(), got.Birthday.String())

	got.Name = "Alice A."
	require.NoError(t, s.UpdateUser(ctx, &got))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.Name)

	ok, err := s.UserExists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	missing := model.User{ID: u.ID + 100, Login: "ghost", Email: "ghost@example.com"}
	assert.ErrorIs(t, s.UpdateUser(ctx, &missing), repository.ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), repository.ErrNotFound)
}

func testUserLoginConflict(t *testing.T, s repository.Store) {
	NewUser(t, s, "bob")
	dup := model.User{Email: "other@example.com", Login: "bob", Name: "Bob"}
	assert.ErrorIs(t, s.CreateUser(context.Background(), &dup), repository.ErrConflict)
}

func testFriendLinks(t *testing.T, s repository.Store) {
	ctx := context.Background()
	a := NewUser(t, s, "a")
	b := NewUser(t, s, "b")
	c := NewUser(t, s, "c")

	require.NoError(t, s.PutFriendLink(ctx, a.ID, b.ID, model.FriendConfirmed))
	require.NoError(t, s.PutFriendLink(ctx, a.ID, c.ID, model.FriendRequest))

	got, err := s.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID}, got.Friends)
	assert.Equal(t, []uint64{c.ID}, got.FriendRequests)

	// overwrite the status of an existing link
	require.NoError(t, s.PutFriendLink(ctx, a.ID, c.ID, model.FriendConfirmed))
	got, err = s.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID, c.ID}, got.Friends)
	assert.Empty(t, got.FriendRequests)

	require.NoError(t, s.DeleteFriendLink(ctx, a.ID, b.ID))
	require.NoError(t, s.DeleteFriendLink(ctx, a.ID, b.ID))
	got, err = s.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{c.ID}, got.Friends)

	other, err := s.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Friends)

	assert.ErrorIs(t, s.PutFriendLink(ctx, a.ID, c.ID+100, model.FriendRequest), repository.ErrNotFound)

	users, err := s.GetUsers(ctx, []uint64{c.ID, a.ID, c.ID + 100})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, c.ID, users[1].ID)
}

func testFilmCredits(t *testing.T, s repository.Store) {
	ctx := context.Background()
	d1 := model.Director{Name: "Greta Gerwig"}
	d2 := model.Director{Name: "Noah Baumbach"}
	require.NoError(t, s.CreateDirector(ctx, &d1))
	require.NoError(t, s.CreateDirector(ctx, &d2))

	f := model.Film{
		Title:       "Frances Ha",
		Description: "New York",
		ReleaseDate: model.NewDate(2012, time.September, 1),
		Duration:    86,
		Rating:      model.Rating{ID: 4},
		Genres:      []model.Genre{{ID: 2}, {ID: 1}, {ID: 2}},
		Directors:   []model.Director{{ID: d2.ID}, {ID: d1.ID}},
	}
	require.NoError(t, s.CreateFilm(ctx, &f))

	got, err := s.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frances Ha", got.Title)
	assert.Equal(t, model.Rating{ID: 4, Name: "R"}, got.Rating)
	assert.Equal(t, []model.Genre{{ID: 1, Name: "Comedy"}, {ID: 2, Name: "Drama"}}, got.Genres)
	assert.Equal(t, []model.Director{d2, d1}, got.Directors)
	assert.Empty(t, got.LikedBy)
	assert.Equal(t, "2012-09-01", got.ReleaseDate.String())

	got.Genres = []model.Genre{{ID: 3}}
	got.Directors = []model.Director{{ID: d1.ID}}
	require.NoError(t, s.UpdateFilm(ctx, &got))
	got, err = s.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Genre{{ID: 3, Name: "Cartoon"}}, got.Genres)
	assert.Equal(t, []model.Director{d1}, got.Directors)

	byDirector, err := s.ListFilmsByDirector(ctx, d1.ID)
	require.NoError(t, err)
	require.Len(t, byDirector, 1)
	assert.Equal(t, f.ID, byDirector[0].ID)

	byDirector, err = s.ListFilmsByDirector(ctx, d2.ID)
	require.NoError(t, err)
	assert.Empty(t, byDirector)
}

func testFilmUnknownRating(t *testing.T, s repository.Store) {
	f := model.Film{
		Title:       "Nowhere",
		ReleaseDate: model.NewDate(2000, time.January, 1),
		Duration:    90,
		Rating:      model.Rating{ID: 99},
	}
	assert.ErrorIs(t, s.CreateFilm(context.Background(), &f), repository.ErrNotFound)

	missing := model.Film{ID: 12345, Title: "x", ReleaseDate: model.NewDate(2000, time.January, 1), Duration: 1, Rating: model.Rating{ID: 1}}
	assert.ErrorIs(t, s.UpdateFilm(context.Background(), &missing), repository.ErrNotFound)
}

func testLikes(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "liker")
	v := NewUser(t, s, "other")
	f1 := NewFilm(t, s, "One", 2001)
	f2 := NewFilm(t, s, "Two", 2002)

	added, err := s.AddLike(ctx, u.ID, f1.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddLike(ctx, u.ID, f1.ID)
	require.NoError(t, err)
	assert.False(t, added, "duplicate like must not change the edge set")

	_, err = s.AddLike(ctx, u.ID, f2.ID)
	require.NoError(t, err)
	_, err = s.AddLike(ctx, v.ID, f1.ID)
	require.NoError(t, err)

	got, err := s.GetFilm(ctx, f1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{u.ID, v.ID}, got.LikedBy)

	liked, err := s.LikedFilms(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f1.ID, f2.ID}, liked)

	all, err := s.AllLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64][]uint64{u.ID: {f1.ID, f2.ID}, v.ID: {f1.ID}}, all)

	removed, err := s.RemoveLike(ctx, u.ID, f1.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveLike(ctx, u.ID, f1.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	films, err := s.GetFilms(ctx, []uint64{f2.ID, f1.ID})
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, []uint64{v.ID}, films[0].LikedBy)
	assert.Equal(t, []uint64{u.ID}, films[1].LikedBy)
}

func testLikeUnknownEntities(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "lonely")
	f := NewFilm(t, s, "Solo", 2010)

	_, err := s.AddLike(ctx, u.ID, f.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.AddLike(ctx, u.ID+100, f.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testReviewVotes(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := NewUser(t, s, "author")
	voter := NewUser(t, s, "voter")
	f := NewFilm(t, s, "Reviewed", 2015)

	positive := true
	rv := model.Review{Content: "great", IsPositive: &positive, UserID: author.ID, FilmID: f.ID}
	require.NoError(t, s.CreateReview(ctx, &rv))
	require.NotZero(t, rv.ID)

	require.NoError(t, s.PutReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID, UserID: voter.ID, Like: true}))
	require.NoError(t, s.PutReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID, UserID: voter.ID, Like: false}))

	votes, err := s.ReviewVotes(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.ReviewVote{{ReviewID: rv.ID, UserID: voter.ID, Like: false}}, votes)

	removed, err := s.DeleteReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID, UserID: voter.ID, Like: true})
	require.NoError(t, err)
	assert.False(t, removed, "polarity mismatch must leave the vote")

	removed, err = s.DeleteReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID, UserID: voter.ID, Like: false})
	require.NoError(t, err)
	assert.True(t, removed)

	require.NoError(t, s.SetUseful(ctx, rv.ID, -3))
	got, err := s.GetReview(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, got.Useful)
	assert.True(t, got.Positive())

	negative := false
	got.Content = "meh"
	got.IsPositive = &negative
	require.NoError(t, s.UpdateReview(ctx, &got))
	got, err = s.GetReview(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, "meh", got.Content)
	assert.False(t, got.Positive())
	assert.Equal(t, -3, got.Useful)

	assert.ErrorIs(t, s.PutReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID + 100, UserID: voter.ID}), repository.ErrNotFound)

	require.NoError(t, s.DeleteReview(ctx, rv.ID))
	ok, err := s.ReviewExists(ctx, rv.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testListReviewsFilter(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "critic")
	f1 := NewFilm(t, s, "First", 2001)
	f2 := NewFilm(t, s, "Second", 2002)
	yes := true
	for _, fid := range []uint64{f1.ID, f2.ID, f1.ID} {
		rv := model.Review{Content: "text", IsPositive: &yes, UserID: u.ID, FilmID: fid}
		require.NoError(t, s.CreateReview(ctx, &rv))
	}

	all, err := s.ListReviews(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	first, err := s.ListReviews(ctx, f1.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, rv := range first {
		assert.Equal(t, f1.ID, rv.FilmID)
	}
}

func testFeedOrder(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "active")
	events := []model.FeedEvent{
		{UserID: u.ID, EventType: model.EventLike, Operation: model.OpAdd, EntityID: 7, Timestamp: 2000},
		{UserID: u.ID, EventType: model.EventFriend, Operation: model.OpAdd, EntityID: 8, Timestamp: 1000},
		{UserID: u.ID, EventType: model.EventLike, Operation: model.OpRemove, EntityID: 7, Timestamp: 2000},
	}
	for i := range events {
		require.NoError(t, s.AppendFeed(ctx, &events[i]))
		require.NotZero(t, events[i].EventID)
	}
	assert.Less(t, events[0].EventID, events[2].EventID)

	feed, err := s.ListFeed(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, events[1], feed[0])
	assert.Equal(t, events[0], feed[1])
	assert.Equal(t, events[2], feed[2])
}

func testDeleteUserCascades(t *testing.T, s repository.Store) {
	ctx := context.Background()
	gone := NewUser(t, s, "gone")
	stay := NewUser(t, s, "stay")
	f := NewFilm(t, s, "Left behind", 1999)

	_, err := s.AddLike(ctx, gone.ID, f.ID)
	require.NoError(t, err)
	require.NoError(t, s.PutFriendLink(ctx, stay.ID, gone.ID, model.FriendConfirmed))
	require.NoError(t, s.PutFriendLink(ctx, gone.ID, stay.ID, model.FriendConfirmed))
	require.NoError(t, s.AppendFeed(ctx, &model.FeedEvent{UserID: gone.ID, EventType: model.EventLike, Operation: model.OpAdd, EntityID: f.ID, Timestamp: 1}))

	yes := true
	rv := model.Review{Content: "kept", IsPositive: &yes, UserID: stay.ID, FilmID: f.ID}
	require.NoError(t, s.CreateReview(ctx, &rv))
	require.NoError(t, s.PutReviewVote(ctx, model.ReviewVote{ReviewID: rv.ID, UserID: gone.ID, Like: true}))
	require.NoError(t, s.SetUseful(ctx, rv.ID, 1))

	require.NoError(t, s.DeleteUser(ctx, gone.ID))

	got, err := s.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikedBy)

	other, err := s.GetUser(ctx, stay.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Friends)

	votes, err := s.ReviewVotes(ctx, rv.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
	kept, err := s.GetReview(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, kept.Useful)

	feed, err := s.ListFeed(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func testDeleteFilmCascades(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := NewUser(t, s, "fan")
	f := NewFilm(t, s, "Doomed", 1980)
	_, err := s.AddLike(ctx, u.ID, f.ID)
	require.NoError(t, err)
	yes := true
	rv := model.Review{Content: "bye", IsPositive: &yes, UserID: u.ID, FilmID: f.ID}
	require.NoError(t, s.CreateReview(ctx, &rv))

	require.NoError(t, s.DeleteFilm(ctx, f.ID))

	liked, err := s.LikedFilms(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)
	_, err = s.GetReview(ctx, rv.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	ok, err := s.FilmExists(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDictionaries(t *testing.T, s repository.Store) {
	ctx := context.Background()
	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 6)
	assert.Equal(t, model.Genre{ID: 1, Name: "Comedy"}, genres[0])

	g, err := s.GetGenre(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Action", g.Name)
	_, err = s.GetGenre(ctx, 60)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ratings, err := s.ListRatings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 5)
	r, err := s.GetRating(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "PG-13", r.Name)
	_, err = s.GetRating(ctx, 30)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testDirectors(t *testing.T, s repository.Store) {
	ctx := context.Background()
	d := model.Director{Name: "Agnes V."}
	require.NoError(t, s.CreateDirector(ctx, &d))

	d.Name = "Agnes Varda"
	require.NoError(t, s.UpdateDirector(ctx, &d))
	got, err := s.GetDirector(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agnes Varda", got.Name)

	f := model.Film{
		Title:       "Cleo from 5 to 7",
		ReleaseDate: model.NewDate(1962, time.April, 11),
		Duration:    90,
		Rating:      model.Rating{ID: 1},
		Directors:   []model.Director{{ID: d.ID}},
	}
	require.NoError(t, s.CreateFilm(ctx, &f))

	require.NoError(t, s.DeleteDirector(ctx, d.ID))
	ok, err := s.DirectorExists(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	film, err := s.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, film.Directors)

	assert.ErrorIs(t, s.DeleteDirector(ctx, d.ID), repository.ErrNotFound)
	list, err := s.ListDirectors(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
