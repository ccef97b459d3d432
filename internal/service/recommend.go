package service

import (
	"context"
	"sort"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/metrics"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Recommender suggests films liked by the user with the most similar taste.
type Recommender struct {
	store repository.Store
}

// NewRecommender returns a Recommender over store.
func NewRecommender(store repository.Store) *Recommender {
	return &Recommender{store: store}
}

// Overlap is the number of film ids present in both sets.
func Overlap(a, b []uint64) int {
	in := make(map[uint64]struct{}, len(a))
	for _, id := range a {
		in[id] = struct{}{}
	}
	n := 0
	for _, id := range b {
		if _, ok := in[id]; ok {
			n++
			delete(in, id)
		}
	}
	return n
}

// BestMatch scans the users in ascending id order and returns the first one
// whose overlap with userID's likes is the largest. A zero overlap means no
// user matched.
func BestMatch(userID uint64, likes map[uint64][]uint64) (best uint64, overlap int) {
	target := likes[userID]
	ids := make([]uint64, 0, len(likes))
	for id := range likes {
		if id != userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if n := Overlap(target, likes[id]); n > overlap {
			best, overlap = id, n
		}
	}
	return best, overlap
}

// Recommend returns the films liked by the most similar user that userID
// has not liked yet, ordered by id.
func (r *Recommender) Recommend(ctx context.Context, userID uint64) ([]model.Film, error) {
	ok, err := r.store.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(EntityUser, userID)
	}
	likes, err := r.store.AllLikes(ctx)
	if err != nil {
		return nil, err
	}
	if len(likes[userID]) == 0 {
		metrics.Recommendations.WithLabelValues("false").Inc()
		return []model.Film{}, nil
	}

	best, overlap := BestMatch(userID, likes)
	if overlap == 0 {
		metrics.Recommendations.WithLabelValues("false").Inc()
		return []model.Film{}, nil
	}
	metrics.Recommendations.WithLabelValues("true").Inc()
	logging.Debug().Uint64("user_id", userID).Uint64("match_id", best).Int("overlap", overlap).Msg("recommendation match")

	seen := make(map[uint64]struct{}, len(likes[userID]))
	for _, id := range likes[userID] {
		seen[id] = struct{}{}
	}
	var candidates []uint64
	for _, id := range likes[best] {
		if _, ok := seen[id]; !ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return []model.Film{}, nil
	}
	return r.store.GetFilms(ctx, candidates)
}
