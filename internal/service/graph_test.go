package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/service"
)

func TestAddLikeIsIdempotent(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		u := f.user(t, "u")
		film := f.film(t, "Heat", 1995)

		require.NoError(t, f.graph.AddLike(f.ctx, u, film))
		require.NoError(t, f.graph.AddLike(f.ctx, u, film))

		got, err := f.store.GetFilm(f.ctx, film)
		require.NoError(t, err)
		assert.Equal(t, []uint64{u}, got.LikedBy)

		feed, err := f.feed.Feed(f.ctx, u)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		for _, e := range feed {
			assert.Equal(t, model.EventLike, e.EventType)
			assert.Equal(t, model.OpAdd, e.Operation)
			assert.Equal(t, film, e.EntityID)
		}
	})
}

func TestAddLikeStrictRejectsDuplicate(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store, service.WithStrictLikes())
		u := f.user(t, "u")
		film := f.film(t, "Heat", 1995)

		require.NoError(t, f.graph.AddLike(f.ctx, u, film))
		assert.ErrorIs(t, f.graph.AddLike(f.ctx, u, film), service.ErrDuplicateLike)
	})
}

func TestAddLikeUnknownEntities(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		u := f.user(t, "u")
		film := f.film(t, "Heat", 1995)

		err := f.graph.AddLike(f.ctx, u, film+100)
		require.ErrorIs(t, err, service.ErrEntityNotFound)
		var nf *service.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, service.EntityFilm, nf.Entity)

		assert.ErrorIs(t, f.graph.AddLike(f.ctx, u+100, film), service.ErrEntityNotFound)

		feed, err := f.feed.Feed(f.ctx, u)
		require.NoError(t, err)
		assert.Empty(t, feed, "failed operations must not leave feed entries")
	})
}

func TestRemoveLikeTwice(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		u := f.user(t, "u")
		film := f.film(t, "Heat", 1995)
		f.like(t, u, film)

		require.NoError(t, f.graph.RemoveLike(f.ctx, u, film))
		assert.ErrorIs(t, f.graph.RemoveLike(f.ctx, u, film), service.ErrLikeNotFound)

		got, err := f.store.GetFilm(f.ctx, film)
		require.NoError(t, err)
		assert.Empty(t, got.LikedBy)

		feed, err := f.feed.Feed(f.ctx, u)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, model.OpRemove, feed[1].Operation)
	})
}

func TestRequestFriendSoftAdd(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		a := f.user(t, "a")
		b := f.user(t, "b")

		require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))

		ua, err := f.store.GetUser(f.ctx, a)
		require.NoError(t, err)
		ub, err := f.store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{b}, ua.Friends, "requester sees the friend before reciprocation")
		assert.Empty(t, ua.FriendRequests)
		assert.Empty(t, ub.Friends)
		assert.Equal(t, []uint64{a}, ub.FriendRequests)

		require.NoError(t, f.graph.RequestFriend(f.ctx, b, a))

		ua, err = f.store.GetUser(f.ctx, a)
		require.NoError(t, err)
		ub, err = f.store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{b}, ua.Friends)
		assert.Equal(t, []uint64{a}, ub.Friends)
		assert.Empty(t, ua.FriendRequests)
		assert.Empty(t, ub.FriendRequests)

		feed, err := f.feed.Feed(f.ctx, a)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.Equal(t, model.EventFriend, feed[0].EventType)
		assert.Equal(t, model.OpAdd, feed[0].Operation)
		assert.Equal(t, b, feed[0].EntityID)
	})
}

func TestRequestFriendRepeatedKeepsFriendship(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		a := f.user(t, "a")
		b := f.user(t, "b")
		require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))
		require.NoError(t, f.graph.RequestFriend(f.ctx, b, a))
		require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))

		ub, err := f.store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{a}, ub.Friends)
		assert.Empty(t, ub.FriendRequests)
	})
}

func TestRequestFriendMutualOnly(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store, service.WithFriendPolicy(service.MutualOnlyPolicy))
		a := f.user(t, "a")
		b := f.user(t, "b")

		require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))
		ua, err := f.store.GetUser(f.ctx, a)
		require.NoError(t, err)
		ub, err := f.store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Empty(t, ua.Friends)
		assert.Equal(t, []uint64{a}, ub.FriendRequests)

		require.NoError(t, f.graph.RequestFriend(f.ctx, b, a))
		ua, err = f.store.GetUser(f.ctx, a)
		require.NoError(t, err)
		ub, err = f.store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{b}, ua.Friends)
		assert.Equal(t, []uint64{a}, ub.Friends)
		assert.Empty(t, ub.FriendRequests)
	})
}

func TestRequestFriendRejectsSelfAndUnknown(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		a := f.user(t, "a")

		assert.ErrorIs(t, f.graph.RequestFriend(f.ctx, a, a), service.ErrInvalidParameter)
		assert.ErrorIs(t, f.graph.RequestFriend(f.ctx, a, a+50), service.ErrEntityNotFound)

		ua, err := f.store.GetUser(f.ctx, a)
		require.NoError(t, err)
		assert.Empty(t, ua.Friends)
	})
}

func TestRemoveFriendIsSymmetric(t *testing.T) {
	setups := []struct {
		name  string
		setup func(f *fixture, t *testing.T, a, b uint64)
	}{
		{"requested by a", func(f *fixture, t *testing.T, a, b uint64) {
			require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))
		}},
		{"requested by b", func(f *fixture, t *testing.T, a, b uint64) {
			require.NoError(t, f.graph.RequestFriend(f.ctx, b, a))
		}},
		{"mutual", func(f *fixture, t *testing.T, a, b uint64) {
			require.NoError(t, f.graph.RequestFriend(f.ctx, a, b))
			require.NoError(t, f.graph.RequestFriend(f.ctx, b, a))
		}},
		{"no link", func(*fixture, *testing.T, uint64, uint64) {}},
	}
	for _, tc := range setups {
		t.Run(tc.name, func(t *testing.T) {
			eachBackend(t, func(t *testing.T, store repository.Store) {
				f := newFixture(t, store)
				a := f.user(t, "a")
				b := f.user(t, "b")
				tc.setup(f, t, a, b)

				require.NoError(t, f.graph.RemoveFriend(f.ctx, a, b))
				require.NoError(t, f.graph.RemoveFriend(f.ctx, a, b), "second removal is a no-op")

				ua, err := f.store.GetUser(f.ctx, a)
				require.NoError(t, err)
				ub, err := f.store.GetUser(f.ctx, b)
				require.NoError(t, err)
				assert.False(t, ua.HasFriend(b))
				assert.False(t, ub.HasFriend(a))
				assert.False(t, ua.HasRequestFrom(b))
				assert.False(t, ub.HasRequestFrom(a))

				feed, err := f.feed.Feed(f.ctx, a)
				require.NoError(t, err)
				require.NotEmpty(t, feed)
				last := feed[len(feed)-1]
				assert.Equal(t, model.EventFriend, last.EventType)
				assert.Equal(t, model.OpRemove, last.Operation)
			})
		})
	}
}

func TestRemoveFriendUnknownUser(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		a := f.user(t, "a")
		assert.ErrorIs(t, f.graph.RemoveFriend(f.ctx, a, a+10), service.ErrEntityNotFound)
	})
}

func TestCommonFriends(t *testing.T) {
	eachBackend(t, func(t *testing.T, store repository.Store) {
		f := newFixture(t, store)
		a := f.user(t, "a")
		b := f.user(t, "b")
		c := f.user(t, "c")
		d := f.user(t, "d")
		e := f.user(t, "e")

		for _, pair := range [][2]uint64{{a, d}, {a, c}, {b, c}, {b, d}, {a, e}} {
			require.NoError(t, f.graph.RequestFriend(f.ctx, pair[0], pair[1]))
		}

		common, err := f.graph.CommonFriends(f.ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{c, d}, userIDs(common))

		friends, err := f.graph.Friends(f.ctx, a)
		require.NoError(t, err)
		assert.Equal(t, []uint64{c, d, e}, userIDs(friends))

		none, err := f.graph.CommonFriends(f.ctx, c, e)
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = f.graph.CommonFriends(f.ctx, a, e+10)
		assert.ErrorIs(t, err, service.ErrEntityNotFound)
	})
}

func TestSoftAddPolicyPure(t *testing.T) {
	a := model.User{ID: 1}
	b := model.User{ID: 2, FriendRequests: []uint64{1}}
	changes := service.SoftAddPolicy(b, a)
	assert.ElementsMatch(t, []service.LinkChange{
		{Owner: 2, Other: 1, Status: model.FriendConfirmed},
		{Owner: 1, Other: 2, Status: model.FriendConfirmed},
	}, changes)

	changes = service.SoftAddPolicy(a, model.User{ID: 3})
	assert.ElementsMatch(t, []service.LinkChange{
		{Owner: 1, Other: 3, Status: model.FriendConfirmed},
		{Owner: 3, Other: 1, Status: model.FriendRequest},
	}, changes)
}

// slowReads widens the gap between reading a user and writing links.
type slowReads struct {
	repository.Store
}

func (s slowReads) GetUser(ctx context.Context, id uint64) (model.User, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.GetUser(ctx, id)
}

func TestCrossingFriendRequestsConfirm(t *testing.T) {
	store := slowReads{Store: memoryStore()}
	f := newFixture(t, store)

	for i := 0; i < 10; i++ {
		a := f.user(t, "a"+string(rune('a'+i)))
		b := f.user(t, "b"+string(rune('a'+i)))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); assert.NoError(t, f.graph.RequestFriend(f.ctx, a, b)) }()
		go func() { defer wg.Done(); assert.NoError(t, f.graph.RequestFriend(f.ctx, b, a)) }()
		wg.Wait()

		ua, err := store.GetUser(f.ctx, a)
		require.NoError(t, err)
		ub, err := store.GetUser(f.ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []uint64{b}, ua.Friends)
		assert.Equal(t, []uint64{a}, ub.Friends)
		assert.Empty(t, ua.FriendRequests)
		assert.Empty(t, ub.FriendRequests)
	}
}
