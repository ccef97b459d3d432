package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/service"
)

func (f *fixture) review(t *testing.T, author, film uint64, content string) model.Review {
	t.Helper()
	yes := true
	rv := model.Review{Content: content, IsPositive: &yes, UserID: author, FilmID: film}
	require.NoError(t, f.reviews.Create(f.ctx, &rv))
	return rv
}

func TestVoteRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		rv := f.review(t, author, f.film(t, "Film", 2000), "fine")

		got, err := f.reviews.Vote(f.ctx, rv.ID, voter, true)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Useful)

		got, err = f.reviews.Vote(f.ctx, rv.ID, voter, false)
		require.NoError(t, err)
		assert.Equal(t, -1, got.Useful, "the dislike replaces the like")

		stored, err := f.reviews.Get(f.ctx, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, -1, stored.Useful)

		votes, err := f.store.ReviewVotes(f.ctx, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.ReviewVote{{ReviewID: rv.ID, UserID: voter, Like: false}}, votes)
	})
}

func TestRetractVote(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		author := f.user(t, "author")
		v1 := f.user(t, "v1")
		v2 := f.user(t, "v2")
		rv := f.review(t, author, f.film(t, "Film", 2000), "fine")

		_, err := f.reviews.Vote(f.ctx, rv.ID, v1, true)
		require.NoError(t, err)
		_, err = f.reviews.Vote(f.ctx, rv.ID, v2, true)
		require.NoError(t, err)

		got, err := f.reviews.RetractVote(f.ctx, rv.ID, v1, false)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Useful, "retracting a dislike that was never cast changes nothing")

		got, err = f.reviews.RetractVote(f.ctx, rv.ID, v1, true)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Useful)

		got, err = f.reviews.RetractVote(f.ctx, rv.ID, v1, true)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Useful)
	})
}

// usefulWrites counts SetUseful calls on the wrapped store.
type usefulWrites struct {
	repository.Store
	n int
}

func (s *usefulWrites) SetUseful(ctx context.Context, reviewID uint64, useful int) error {
	s.n++
	return s.Store.SetUseful(ctx, reviewID, useful)
}

func TestUsefulnessWrites(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		counted := &usefulWrites{Store: store}
		f := newFixture(t, counted)
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		rv := f.review(t, author, f.film(t, "Film", 2000), "fine")

		_, err := f.reviews.Vote(f.ctx, rv.ID, voter, true)
		require.NoError(t, err)
		assert.Equal(t, 1, counted.n, "a changed score is written")

		_, err = f.reviews.Vote(f.ctx, rv.ID, voter, true)
		require.NoError(t, err)
		assert.Equal(t, 1, counted.n, "repeating the same vote leaves the score alone")

		got, err := f.reviews.RetractVote(f.ctx, rv.ID, voter, false)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Useful)
		assert.Equal(t, 2, counted.n, "retracting always rewrites the score")

		_, err = f.reviews.Vote(f.ctx, rv.ID, voter, false)
		require.NoError(t, err)
		assert.Equal(t, 3, counted.n)
	})
}

func TestVoteUnknownReview(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		u := f.user(t, "u")

		_, err := f.reviews.Vote(f.ctx, 999, u, true)
		assert.ErrorIs(t, err, service.ErrReviewNotFound)
		assert.ErrorIs(t, err, service.ErrEntityNotFound)

		_, err = f.reviews.RetractVote(f.ctx, 999, u, true)
		assert.ErrorIs(t, err, service.ErrReviewNotFound)
	})
}

func TestListReviews(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		author := f.user(t, "author")
		fans := []uint64{f.user(t, "fan1"), f.user(t, "fan2")}
		film := f.film(t, "Film", 2000)
		other := f.film(t, "Other", 2000)

		low := f.review(t, author, film, "low")
		high := f.review(t, author, film, "high")
		mid := f.review(t, author, film, "mid")
		elsewhere := f.review(t, author, other, "elsewhere")
		for _, u := range fans {
			_, err := f.reviews.Vote(f.ctx, high.ID, u, true)
			require.NoError(t, err)
		}
		_, err := f.reviews.Vote(f.ctx, mid.ID, fans[0], true)
		require.NoError(t, err)
		_, err = f.reviews.Vote(f.ctx, low.ID, fans[0], false)
		require.NoError(t, err)

		list, err := f.reviews.List(f.ctx, film, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint64{high.ID, mid.ID, low.ID}, reviewIDs(list))

		list, err = f.reviews.List(f.ctx, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint64{high.ID, mid.ID}, reviewIDs(list))

		list, err = f.reviews.List(f.ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{high.ID, mid.ID, elsewhere.ID, low.ID}, reviewIDs(list))

		_, err = f.reviews.List(f.ctx, other+100, 10)
		assert.ErrorIs(t, err, service.ErrEntityNotFound)
	})
}

func TestListReviewsDefaultLimit(t *testing.T) {
	f := newFixture(t, memoryStore())
	author := f.user(t, "author")
	film := f.film(t, "Film", 2000)
	for i := 0; i < service.DefaultReviewLimit+3; i++ {
		f.review(t, author, film, "text")
	}
	list, err := f.reviews.List(f.ctx, film, -1)
	require.NoError(t, err)
	assert.Len(t, list, service.DefaultReviewLimit)
}

func TestReviewLifecycleFeed(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		author := f.user(t, "author")
		rv := f.review(t, author, f.film(t, "Film", 2000), "first take")

		no := false
		update := model.Review{ID: rv.ID, Content: "second take", IsPositive: &no}
		require.NoError(t, f.reviews.Update(f.ctx, &update))
		assert.Equal(t, author, update.UserID)
		assert.False(t, update.Positive())

		require.NoError(t, f.reviews.Delete(f.ctx, rv.ID))
		_, err := f.reviews.Get(f.ctx, rv.ID)
		assert.ErrorIs(t, err, service.ErrReviewNotFound)

		feed, err := f.feed.Feed(f.ctx, author)
		require.NoError(t, err)
		require.Len(t, feed, 3)
		for i, op := range []model.Operation{model.OpAdd, model.OpUpdate, model.OpRemove} {
			assert.Equal(t, model.EventReview, feed[i].EventType)
			assert.Equal(t, op, feed[i].Operation)
			assert.Equal(t, rv.ID, feed[i].EntityID)
		}
	})
}

func TestCreateReviewValidation(t *testing.T) {
	f := newFixture(t, memoryStore())
	author := f.user(t, "author")
	film := f.film(t, "Film", 2000)
	yes := true

	blank := model.Review{Content: "  ", IsPositive: &yes, UserID: author, FilmID: film}
	assert.ErrorIs(t, f.reviews.Create(f.ctx, &blank), service.ErrValidation)

	noPolarity := model.Review{Content: "ok", UserID: author, FilmID: film}
	assert.ErrorIs(t, f.reviews.Create(f.ctx, &noPolarity), service.ErrValidation)

	ghost := model.Review{Content: "ok", IsPositive: &yes, UserID: author + 10, FilmID: film}
	assert.ErrorIs(t, f.reviews.Create(f.ctx, &ghost), service.ErrEntityNotFound)

	lost := model.Review{Content: "ok", IsPositive: &yes, UserID: author, FilmID: film + 10}
	assert.ErrorIs(t, f.reviews.Create(f.ctx, &lost), service.ErrEntityNotFound)
}

func TestUsefulness(t *testing.T) {
	assert.Zero(t, service.Usefulness(nil))
	assert.Equal(t, 1, service.Usefulness([]model.ReviewVote{{Like: true}, {Like: true}, {Like: false}}))
	assert.Equal(t, -2, service.Usefulness([]model.ReviewVote{{Like: false}, {Like: false}}))
}

func reviewIDs(reviews []model.Review) []uint64 {
	out := make([]uint64, len(reviews))
	for i, rv := range reviews {
		out[i] = rv.ID
	}
	return out
}
