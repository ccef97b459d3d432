package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/repository/memory"
	"github.com/iliyamo/filmorate/internal/repository/storetest"
	"github.com/iliyamo/filmorate/internal/service"
)

// eachBackend runs fn against the memory store and, when configured, MySQL.
func eachBackend(t *testing.T, fn func(t *testing.T, store repository.Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, memory.New()) })
	t.Run("mysql", func(t *testing.T) { fn(t, storetest.MySQL(t)(t)) })
}

// tickClock advances one millisecond on every reading so feed entries
// never share a timestamp.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type fixture struct {
	ctx      context.Context
	store    repository.Store
	feed     *service.FeedRecorder
	graph    *service.Graph
	ranking  *service.Ranking
	recs     *service.Recommender
	search   *service.Searcher
	reviews  *service.Reviews
	catalog  *service.Catalog
	director uint64
}

func newFixture(t *testing.T, store repository.Store, opts ...service.GraphOption) *fixture {
	t.Helper()
	clock := &tickClock{t: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	feed := service.NewFeedRecorder(store, service.WithClock(clock.Now))
	return &fixture{
		ctx:     context.Background(),
		store:   store,
		feed:    feed,
		graph:   service.NewGraph(store, feed, opts...),
		ranking: service.NewRanking(store),
		recs:    service.NewRecommender(store),
		search:  service.NewSearcher(store),
		reviews: service.NewReviews(store, feed),
		catalog: service.NewCatalog(store),
	}
}

func (f *fixture) user(t *testing.T, login string) uint64 {
	t.Helper()
	return storetest.NewUser(t, f.store, login).ID
}

func (f *fixture) film(t *testing.T, title string, year int, genres ...uint64) uint64 {
	t.Helper()
	return storetest.NewFilm(t, f.store, title, year, genres...).ID
}

func (f *fixture) directedFilm(t *testing.T, title string, year int, director string) uint64 {
	t.Helper()
	d := model.Director{Name: director}
	require.NoError(t, f.store.CreateDirector(f.ctx, &d))
	film := model.Film{
		Title:       title,
		ReleaseDate: model.NewDate(year, time.June, 1),
		Duration:    120,
		Rating:      model.Rating{ID: 2},
		Directors:   []model.Director{{ID: d.ID}},
	}
	require.NoError(t, f.catalog.CreateFilm(f.ctx, &film))
	f.director = d.ID
	return film.ID
}

func (f *fixture) like(t *testing.T, userID uint64, films ...uint64) {
	t.Helper()
	for _, id := range films {
		require.NoError(t, f.graph.AddLike(f.ctx, userID, id))
	}
}

func (f *fixture) likeN(t *testing.T, filmID uint64, n int, prefix string) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.like(t, f.user(t, prefix+string(rune('a'+i))), filmID)
	}
}

func filmIDs(films []model.Film) []uint64 {
	out := make([]uint64, len(films))
	for i, f := range films {
		out[i] = f.ID
	}
	return out
}

func userIDs(users []model.User) []uint64 {
	out := make([]uint64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func memoryStore() repository.Store { return memory.New() }
