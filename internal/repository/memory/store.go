// Package memory is an in-process implementation of repository.Store. It
// keeps the same edge-table shape as the MySQL schema so derived fields are
// rebuilt on every read, and guards all state with one RWMutex so each
// method is atomic.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Genres and Ratings are the dictionaries every new store is seeded with.
// They match the rows inserted by the MySQL migrations.
var (
	Genres = []model.Genre{
		{ID: 1, Name: "Comedy"}, {ID: 2, Name: "Drama"}, {ID: 3, Name: "Cartoon"},
		{ID: 4, Name: "Thriller"}, {ID: 5, Name: "Documentary"}, {ID: 6, Name: "Action"},
	}
	Ratings = []model.Rating{
		{ID: 1, Name: "G"}, {ID: 2, Name: "PG"}, {ID: 3, Name: "PG-13"},
		{ID: 4, Name: "R"}, {ID: 5, Name: "NC-17"},
	}
)

type filmRow struct {
	film      model.Film
	genres    []uint64
	directors []uint64
}

type voteKey struct {
	reviewID uint64
	userID   uint64
}

// Store is a repository.Store held in maps.
type Store struct {
	mu sync.RWMutex

	users     map[uint64]model.User
	films     map[uint64]filmRow
	directors map[uint64]model.Director
	reviews   map[uint64]model.Review
	genres    map[uint64]model.Genre
	ratings   map[uint64]model.Rating

	likes map[uint64]map[uint64]struct{}           // user -> films
	links map[uint64]map[uint64]model.FriendStatus // owner -> other -> status
	votes map[voteKey]bool
	feed  []model.FeedEvent

	userSeq, filmSeq, directorSeq, reviewSeq, eventSeq uint64
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store seeded with the genre and rating dictionaries.
func New() *Store {
	s := &Store{
		users:     make(map[uint64]model.User),
		films:     make(map[uint64]filmRow),
		directors: make(map[uint64]model.Director),
		reviews:   make(map[uint64]model.Review),
		genres:    make(map[uint64]model.Genre),
		ratings:   make(map[uint64]model.Rating),
		likes:     make(map[uint64]map[uint64]struct{}),
		links:     make(map[uint64]map[uint64]model.FriendStatus),
		votes:     make(map[voteKey]bool),
	}
	for _, g := range Genres {
		s.genres[g.ID] = g
	}
	for _, r := range Ratings {
		s.ratings[r.ID] = r
	}
	return s
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ----- users -----

func (s *Store) loginTaken(login string, except uint64) bool {
	for id, u := range s.users {
		if id != except && u.Login == login {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginTaken(u.Login, 0) {
		return repository.ErrConflict
	}
	s.userSeq++
	u.ID = s.userSeq
	u.Friends = []uint64{}
	u.FriendRequests = nil
	s.users[u.ID] = model.User{ID: u.ID, Email: u.Email, Login: u.Login, Name: u.Name, Birthday: u.Birthday}
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.loginTaken(u.Login, u.ID) {
		return repository.ErrConflict
	}
	s.users[u.ID] = model.User{ID: u.ID, Email: u.Email, Login: u.Login, Name: u.Name, Birthday: u.Birthday}
	*u = s.userLocked(u.ID)
	return nil
}

// userLocked materialises the friend sets of a stored user.
func (s *Store) userLocked(id uint64) model.User {
	u := s.users[id]
	u.Friends = []uint64{}
	u.FriendRequests = nil
	links := s.links[id]
	for _, other := range sortedKeys(links) {
		switch links[other] {
		case model.FriendConfirmed:
			u.Friends = append(u.Friends, other)
		case model.FriendRequest:
			u.FriendRequests = append(u.FriendRequests, other)
		}
	}
	return u
}

func (s *Store) GetUser(_ context.Context, id uint64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; !ok {
		return model.User{}, repository.ErrNotFound
	}
	return s.userLocked(id), nil
}

func (s *Store) GetUsers(_ context.Context, ids []uint64) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uniq := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.users[id]; ok {
			uniq[id] = struct{}{}
		}
	}
	out := make([]model.User, 0, len(uniq))
	for _, id := range sortedKeys(uniq) {
		out = append(out, s.userLocked(id))
	}
	return out, nil
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		out = append(out, s.userLocked(id))
	}
	return out, nil
}

// DeleteUser removes the user with its likes, links, reviews, votes and
// feed entries.
func (s *Store) DeleteUser(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	delete(s.likes, id)
	delete(s.links, id)
	for _, other := range s.links {
		delete(other, id)
	}
	for rid, rv := range s.reviews {
		if rv.UserID == id {
			s.deleteReviewLocked(rid)
		}
	}
	for k, like := range s.votes {
		if k.userID != id {
			continue
		}
		delete(s.votes, k)
		// keep the stored score equal to the remaining votes
		if rv, ok := s.reviews[k.reviewID]; ok {
			if like {
				rv.Useful--
			} else {
				rv.Useful++
			}
			s.reviews[k.reviewID] = rv
		}
	}
	kept := s.feed[:0]
	for _, e := range s.feed {
		if e.UserID != id {
			kept = append(kept, e)
		}
	}
	s.feed = kept
	return nil
}

func (s *Store) UserExists(_ context.Context, id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// ----- friendship links -----

func (s *Store) PutFriendLink(_ context.Context, userID, otherID uint64, status model.FriendStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.users[otherID]; !ok {
		return repository.ErrNotFound
	}
	if s.links[userID] == nil {
		s.links[userID] = make(map[uint64]model.FriendStatus)
	}
	s.links[userID][otherID] = status
	return nil
}

func (s *Store) DeleteFriendLink(_ context.Context, userID, otherID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links[userID], otherID)
	return nil
}

// ----- films -----

func (s *Store) checkFilmRefs(f *model.Film) error {
	if _, ok := s.ratings[f.Rating.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, g := range f.Genres {
		if _, ok := s.genres[g.ID]; !ok {
			return repository.ErrNotFound
		}
	}
	for _, d := range f.Directors {
		if _, ok := s.directors[d.ID]; !ok {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (s *Store) putFilmLocked(f *model.Film) {
	f.Genres = model.NormalizeGenres(f.Genres)
	f.Directors = model.NormalizeDirectors(f.Directors)
	row := filmRow{film: model.Film{
		ID: f.ID, Title: f.Title, Description: f.Description, ReleaseDate: f.ReleaseDate,
		Duration: f.Duration, Rating: model.Rating{ID: f.Rating.ID},
	}}
	for _, g := range f.Genres {
		row.genres = append(row.genres, g.ID)
	}
	for _, d := range f.Directors {
		row.directors = append(row.directors, d.ID)
	}
	s.films[f.ID] = row
}

func (s *Store) CreateFilm(_ context.Context, f *model.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFilmRefs(f); err != nil {
		return err
	}
	s.filmSeq++
	f.ID = s.filmSeq
	s.putFilmLocked(f)
	*f = s.filmLocked(f.ID)
	return nil
}

func (s *Store) UpdateFilm(_ context.Context, f *model.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.films[f.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := s.checkFilmRefs(f); err != nil {
		return err
	}
	s.putFilmLocked(f)
	*f = s.filmLocked(f.ID)
	return nil
}

// filmLocked resolves the rating, genres, directors and likes of a stored
// film.
func (s *Store) filmLocked(id uint64) model.Film {
	row := s.films[id]
	f := row.film
	f.Rating = s.ratings[f.Rating.ID]
	f.Genres = make([]model.Genre, 0, len(row.genres))
	for _, gid := range row.genres {
		f.Genres = append(f.Genres, s.genres[gid])
	}
	f.Directors = make([]model.Director, 0, len(row.directors))
	for _, did := range row.directors {
		if d, ok := s.directors[did]; ok {
			f.Directors = append(f.Directors, d)
		}
	}
	f.LikedBy = []uint64{}
	for _, uid := range sortedKeys(s.likes) {
		if _, ok := s.likes[uid][id]; ok {
			f.LikedBy = append(f.LikedBy, uid)
		}
	}
	return f
}

func (s *Store) GetFilm(_ context.Context, id uint64) (model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.films[id]; !ok {
		return model.Film{}, repository.ErrNotFound
	}
	return s.filmLocked(id), nil
}

func (s *Store) GetFilms(_ context.Context, ids []uint64) ([]model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uniq := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.films[id]; ok {
			uniq[id] = struct{}{}
		}
	}
	out := make([]model.Film, 0, len(uniq))
	for _, id := range sortedKeys(uniq) {
		out = append(out, s.filmLocked(id))
	}
	return out, nil
}

func (s *Store) ListFilms(_ context.Context) ([]model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Film, 0, len(s.films))
	for _, id := range sortedKeys(s.films) {
		out = append(out, s.filmLocked(id))
	}
	return out, nil
}

func (s *Store) ListFilmsByDirector(_ context.Context, directorID uint64) ([]model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Film{}
	for _, id := range sortedKeys(s.films) {
		for _, did := range s.films[id].directors {
			if did == directorID {
				out = append(out, s.filmLocked(id))
				break
			}
		}
	}
	return out, nil
}

// DeleteFilm removes the film with its likes, reviews and review votes.
func (s *Store) DeleteFilm(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.films[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.films, id)
	for _, liked := range s.likes {
		delete(liked, id)
	}
	for rid, rv := range s.reviews {
		if rv.FilmID == id {
			s.deleteReviewLocked(rid)
		}
	}
	return nil
}

func (s *Store) FilmExists(_ context.Context, id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.films[id]
	return ok, nil
}

// ----- genres and ratings -----

func (s *Store) ListGenres(_ context.Context) ([]model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Genre, 0, len(s.genres))
	for _, id := range sortedKeys(s.genres) {
		out = append(out, s.genres[id])
	}
	return out, nil
}

func (s *Store) GetGenre(_ context.Context, id uint64) (model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.genres[id]
	if !ok {
		return model.Genre{}, repository.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListRatings(_ context.Context) ([]model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rating, 0, len(s.ratings))
	for _, id := range sortedKeys(s.ratings) {
		out = append(out, s.ratings[id])
	}
	return out, nil
}

func (s *Store) GetRating(_ context.Context, id uint64) (model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[id]
	if !ok {
		return model.Rating{}, repository.ErrNotFound
	}
	return r, nil
}

// ----- directors -----

func (s *Store) CreateDirector(_ context.Context, d *model.Director) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directorSeq++
	d.ID = s.directorSeq
	s.directors[d.ID] = *d
	return nil
}

func (s *Store) UpdateDirector(_ context.Context, d *model.Director) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.directors[d.ID]; !ok {
		return repository.ErrNotFound
	}
	s.directors[d.ID] = *d
	return nil
}

func (s *Store) GetDirector(_ context.Context, id uint64) (model.Director, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.directors[id]
	if !ok {
		return model.Director{}, repository.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDirectors(_ context.Context) ([]model.Director, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Director, 0, len(s.directors))
	for _, id := range sortedKeys(s.directors) {
		out = append(out, s.directors[id])
	}
	return out, nil
}

// DeleteDirector removes the director and its film credits.
func (s *Store) DeleteDirector(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.directors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.directors, id)
	for fid, row := range s.films {
		kept := row.directors[:0]
		for _, did := range row.directors {
			if did != id {
				kept = append(kept, did)
			}
		}
		row.directors = kept
		s.films[fid] = row
	}
	return nil
}

func (s *Store) DirectorExists(_ context.Context, id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.directors[id]
	return ok, nil
}

// ----- likes -----

func (s *Store) AddLike(_ context.Context, userID, filmID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return false, repository.ErrNotFound
	}
	if _, ok := s.films[filmID]; !ok {
		return false, repository.ErrNotFound
	}
	liked := s.likes[userID]
	if liked == nil {
		liked = make(map[uint64]struct{})
		s.likes[userID] = liked
	}
	if _, ok := liked[filmID]; ok {
		return false, nil
	}
	liked[filmID] = struct{}{}
	return true, nil
}

func (s *Store) RemoveLike(_ context.Context, userID, filmID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[userID][filmID]; !ok {
		return false, nil
	}
	delete(s.likes[userID], filmID)
	return true, nil
}

func (s *Store) LikedFilms(_ context.Context, userID uint64) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.likes[userID]), nil
}

func (s *Store) AllLikes(_ context.Context) (map[uint64][]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint64][]uint64, len(s.likes))
	for uid, liked := range s.likes {
		if len(liked) > 0 {
			out[uid] = sortedKeys(liked)
		}
	}
	return out, nil
}

// ----- reviews -----

func (s *Store) CreateReview(_ context.Context, rv *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[rv.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.films[rv.FilmID]; !ok {
		return repository.ErrNotFound
	}
	s.reviewSeq++
	rv.ID = s.reviewSeq
	rv.Useful = 0
	positive := rv.Positive()
	rv.IsPositive = &positive
	s.reviews[rv.ID] = *rv
	return nil
}

func (s *Store) UpdateReview(_ context.Context, rv *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reviews[rv.ID]
	if !ok {
		return repository.ErrNotFound
	}
	positive := rv.Positive()
	stored.Content = rv.Content
	stored.IsPositive = &positive
	s.reviews[rv.ID] = stored
	*rv = stored
	return nil
}

func (s *Store) GetReview(_ context.Context, id uint64) (model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rv, ok := s.reviews[id]
	if !ok {
		return model.Review{}, repository.ErrNotFound
	}
	return rv, nil
}

func (s *Store) ListReviews(_ context.Context, filmID uint64) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Review{}
	for _, id := range sortedKeys(s.reviews) {
		rv := s.reviews[id]
		if filmID == 0 || rv.FilmID == filmID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (s *Store) deleteReviewLocked(id uint64) {
	delete(s.reviews, id)
	for k := range s.votes {
		if k.reviewID == id {
			delete(s.votes, k)
		}
	}
}

func (s *Store) DeleteReview(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteReviewLocked(id)
	return nil
}

func (s *Store) ReviewExists(_ context.Context, id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reviews[id]
	return ok, nil
}

func (s *Store) PutReviewVote(_ context.Context, v model.ReviewVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[v.ReviewID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.users[v.UserID]; !ok {
		return repository.ErrNotFound
	}
	s.votes[voteKey{v.ReviewID, v.UserID}] = v.Like
	return nil
}

func (s *Store) DeleteReviewVote(_ context.Context, v model.ReviewVote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voteKey{v.ReviewID, v.UserID}
	like, ok := s.votes[k]
	if !ok || like != v.Like {
		return false, nil
	}
	delete(s.votes, k)
	return true, nil
}

func (s *Store) ReviewVotes(_ context.Context, reviewID uint64) ([]model.ReviewVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.ReviewVote{}
	for k, like := range s.votes {
		if k.reviewID == reviewID {
			out = append(out, model.ReviewVote{ReviewID: k.reviewID, UserID: k.userID, Like: like})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) SetUseful(_ context.Context, reviewID uint64, useful int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[reviewID]
	if !ok {
		return repository.ErrNotFound
	}
	rv.Useful = useful
	s.reviews[reviewID] = rv
	return nil
}

// ----- feed -----

func (s *Store) AppendFeed(_ context.Context, e *model.FeedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[e.UserID]; !ok {
		return repository.ErrNotFound
	}
	s.eventSeq++
	e.EventID = s.eventSeq
	s.feed = append(s.feed, *e)
	return nil
}

func (s *Store) ListFeed(_ context.Context, userID uint64) ([]model.FeedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.FeedEvent{}
	for _, e := range s.feed {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}
