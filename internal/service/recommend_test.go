package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/service"
)

func TestRecommendPicksMostSimilarUser(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		u1 := f.user(t, "u1")
		u2 := f.user(t, "u2")
		u3 := f.user(t, "u3")
		f1 := f.film(t, "F1", 2001)
		f2 := f.film(t, "F2", 2002)
		f3 := f.film(t, "F3", 2003)
		f4 := f.film(t, "F4", 2004)
		f5 := f.film(t, "F5", 2005)
		f.like(t, u1, f1, f2, f3)
		f.like(t, u2, f1, f2, f4)
		f.like(t, u3, f5)

		films, err := f.recs.Recommend(f.ctx, u1)
		require.NoError(t, err)
		assert.Equal(t, []uint64{f4}, filmIDs(films))
	})
}

func TestRecommendEmpty(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		only := f.user(t, "only")
		film := f.film(t, "Alone", 2000)
		f.like(t, only, film)

		films, err := f.recs.Recommend(f.ctx, only)
		require.NoError(t, err)
		assert.Empty(t, films, "a single user gets nothing")

		idle := f.user(t, "idle")
		films, err = f.recs.Recommend(f.ctx, idle)
		require.NoError(t, err)
		assert.Empty(t, films, "a user without likes gets nothing")

		stranger := f.user(t, "stranger")
		other := f.film(t, "Other", 2001)
		f.like(t, stranger, other)
		films, err = f.recs.Recommend(f.ctx, stranger)
		require.NoError(t, err)
		assert.Empty(t, films, "zero overlap gets nothing")
	})
}

func TestRecommendUnknownUser(t *testing.T) {
	f := newFixture(t, memoryStore())
	_, err := f.recs.Recommend(f.ctx, 42)
	assert.ErrorIs(t, err, service.ErrEntityNotFound)
}

func TestRecommendTieGoesToFirstUser(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		target := f.user(t, "target")
		early := f.user(t, "early")
		late := f.user(t, "late")
		shared := f.film(t, "Shared", 2000)
		fromEarly := f.film(t, "Early pick", 2001)
		fromLate := f.film(t, "Late pick", 2002)
		f.like(t, target, shared)
		f.like(t, early, shared, fromEarly)
		f.like(t, late, shared, fromLate)

		films, err := f.recs.Recommend(f.ctx, target)
		require.NoError(t, err)
		assert.Equal(t, []uint64{fromEarly}, filmIDs(films))
	})
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 2, service.Overlap([]uint64{1, 2, 3}, []uint64{3, 1, 9}))
	assert.Equal(t, 0, service.Overlap(nil, []uint64{1}))
	assert.Equal(t, 1, service.Overlap([]uint64{1}, []uint64{1, 1}))
}

func TestBestMatch(t *testing.T) {
	likes := map[uint64][]uint64{
		1: {10, 20, 30},
		2: {10, 20, 40},
		3: {50},
		4: {10, 30, 60},
	}
	best, overlap := service.BestMatch(1, likes)
	assert.Equal(t, uint64(2), best, "ties resolve to the lowest id")
	assert.Equal(t, 2, overlap)

	_, overlap = service.BestMatch(3, likes)
	assert.Zero(t, overlap)

	_, overlap = service.BestMatch(1, map[uint64][]uint64{1: {10}})
	assert.Zero(t, overlap)
}
