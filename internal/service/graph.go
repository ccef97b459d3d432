package service

import (
	"context"
	"sync"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// LinkChange is one write to the friendship links: set Owner -> Other to
// Status, or remove the link when Delete is true.
type LinkChange struct {
	Owner  uint64
	Other  uint64
	Status model.FriendStatus
	Delete bool
}

// FriendPolicy decides which link writes a friend request from requester
// to target produces, given both users' current sets.
type FriendPolicy func(requester, target model.User) []LinkChange

// SoftAddPolicy is the default request behaviour. A request answering an
// earlier one from the target confirms the friendship on both sides.
// Otherwise the target gets a pending request and the requester sees the
// target as a friend right away, before the target reciprocates.
func SoftAddPolicy(requester, target model.User) []LinkChange {
	if requester.HasRequestFrom(target.ID) {
		return []LinkChange{
			{Owner: requester.ID, Other: target.ID, Status: model.FriendConfirmed},
			{Owner: target.ID, Other: requester.ID, Status: model.FriendConfirmed},
		}
	}
	changes := []LinkChange{{Owner: requester.ID, Other: target.ID, Status: model.FriendConfirmed}}
	if !target.HasFriend(requester.ID) {
		changes = append(changes, LinkChange{Owner: target.ID, Other: requester.ID, Status: model.FriendRequest})
	}
	return changes
}

// MutualOnlyPolicy only lists a friend once both users asked: a first
// request leaves a pending request on the target and nothing on the
// requester.
func MutualOnlyPolicy(requester, target model.User) []LinkChange {
	if requester.HasRequestFrom(target.ID) || target.HasFriend(requester.ID) {
		return []LinkChange{
			{Owner: requester.ID, Other: target.ID, Status: model.FriendConfirmed},
			{Owner: target.ID, Other: requester.ID, Status: model.FriendConfirmed},
		}
	}
	return []LinkChange{{Owner: target.ID, Other: requester.ID, Status: model.FriendRequest}}
}

// pairStripes is the number of locks friendship writes are spread over.
const pairStripes = 64

// Graph maintains the like and friendship relations.
type Graph struct {
	store       repository.Store
	feed        *FeedRecorder
	policy      FriendPolicy
	strictLikes bool

	// friendship writes for one unordered pair of users are serialised so
	// crossing requests see each other's links
	pairs [pairStripes]sync.Mutex
}

func (g *Graph) lockPair(a, b uint64) func() {
	if a > b {
		a, b = b, a
	}
	mu := &g.pairs[(a*31+b)%pairStripes]
	mu.Lock()
	return mu.Unlock
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithFriendPolicy swaps the friend request behaviour.
func WithFriendPolicy(p FriendPolicy) GraphOption {
	return func(g *Graph) { g.policy = p }
}

// WithStrictLikes makes AddLike fail with ErrDuplicateLike when the like
// already exists instead of treating it as a no-op.
func WithStrictLikes() GraphOption {
	return func(g *Graph) { g.strictLikes = true }
}

// NewGraph returns a Graph using SoftAddPolicy unless overridden.
func NewGraph(store repository.Store, feed *FeedRecorder, opts ...GraphOption) *Graph {
	g := &Graph{store: store, feed: feed, policy: SoftAddPolicy}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) requireUser(ctx context.Context, id uint64) error {
	ok, err := g.store.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityUser, id)
	}
	return nil
}

func (g *Graph) requireFilm(ctx context.Context, id uint64) error {
	ok, err := g.store.FilmExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityFilm, id)
	}
	return nil
}

// AddLike records that userID likes filmID. Liking twice is a no-op unless
// the graph is strict; the feed gets a LIKE/ADD entry either way.
func (g *Graph) AddLike(ctx context.Context, userID, filmID uint64) error {
	if err := g.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := g.requireFilm(ctx, filmID); err != nil {
		return err
	}
	added, err := g.store.AddLike(ctx, userID, filmID)
	if err != nil {
		return storeErr(err, EntityFilm, filmID)
	}
	if !added && g.strictLikes {
		return invalidLike(ErrDuplicateLike, userID, filmID)
	}
	logging.Debug().Uint64("user_id", userID).Uint64("film_id", filmID).Bool("added", added).Msg("like added")
	return g.feed.Record(ctx, userID, model.EventLike, model.OpAdd, filmID)
}

// RemoveLike deletes the like of userID on filmID.
func (g *Graph) RemoveLike(ctx context.Context, userID, filmID uint64) error {
	if err := g.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := g.requireFilm(ctx, filmID); err != nil {
		return err
	}
	removed, err := g.store.RemoveLike(ctx, userID, filmID)
	if err != nil {
		return err
	}
	if !removed {
		return invalidLike(ErrLikeNotFound, userID, filmID)
	}
	logging.Debug().Uint64("user_id", userID).Uint64("film_id", filmID).Msg("like removed")
	return g.feed.Record(ctx, userID, model.EventLike, model.OpRemove, filmID)
}

// RequestFriend applies the friend policy to a request from userID to
// otherID and records FRIEND/ADD for the requester.
func (g *Graph) RequestFriend(ctx context.Context, userID, otherID uint64) error {
	if userID == otherID {
		return invalidf("user %d cannot befriend themselves", userID)
	}
	unlock := g.lockPair(userID, otherID)
	defer unlock()

	requester, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return storeErr(err, EntityUser, userID)
	}
	target, err := g.store.GetUser(ctx, otherID)
	if err != nil {
		return storeErr(err, EntityUser, otherID)
	}
	for _, c := range g.policy(requester, target) {
		if err := g.applyLink(ctx, c); err != nil {
			return err
		}
	}
	logging.Debug().Uint64("user_id", userID).Uint64("friend_id", otherID).Msg("friend requested")
	return g.feed.Record(ctx, userID, model.EventFriend, model.OpAdd, otherID)
}

func (g *Graph) applyLink(ctx context.Context, c LinkChange) error {
	if c.Delete {
		return g.store.DeleteFriendLink(ctx, c.Owner, c.Other)
	}
	if err := g.store.PutFriendLink(ctx, c.Owner, c.Other, c.Status); err != nil {
		return storeErr(err, EntityUser, c.Other)
	}
	return nil
}

// RemoveFriend clears every link between the two users in both directions.
// Removing an absent friendship is not an error.
func (g *Graph) RemoveFriend(ctx context.Context, userID, otherID uint64) error {
	if userID == otherID {
		return invalidf("user %d cannot unfriend themselves", userID)
	}
	if err := g.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := g.requireUser(ctx, otherID); err != nil {
		return err
	}
	unlock := g.lockPair(userID, otherID)
	defer unlock()

	// each half is idempotent, so the order does not matter
	for _, c := range []LinkChange{
		{Owner: userID, Other: otherID, Delete: true},
		{Owner: otherID, Other: userID, Delete: true},
	} {
		if err := g.applyLink(ctx, c); err != nil {
			return err
		}
	}
	logging.Debug().Uint64("user_id", userID).Uint64("friend_id", otherID).Msg("friend removed")
	return g.feed.Record(ctx, userID, model.EventFriend, model.OpRemove, otherID)
}

// Friends returns the users userID lists as friends, ascending by id.
func (g *Graph) Friends(ctx context.Context, userID uint64) ([]model.User, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, EntityUser, userID)
	}
	return g.store.GetUsers(ctx, u.Friends)
}

// CommonFriends returns the users both userID and otherID list as friends,
// ascending by id.
func (g *Graph) CommonFriends(ctx context.Context, userID, otherID uint64) ([]model.User, error) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, EntityUser, userID)
	}
	o, err := g.store.GetUser(ctx, otherID)
	if err != nil {
		return nil, storeErr(err, EntityUser, otherID)
	}
	common := intersect(u.Friends, o.Friends)
	if len(common) == 0 {
		return []model.User{}, nil
	}
	return g.store.GetUsers(ctx, common)
}

// intersect returns the ids present in both slices, in the order of a.
func intersect(a, b []uint64) []uint64 {
	in := make(map[uint64]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	out := []uint64{}
	for _, id := range a {
		if _, ok := in[id]; ok {
			out = append(out, id)
			delete(in, id)
		}
	}
	return out
}
