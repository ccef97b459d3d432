package service

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// DefaultReviewLimit is used by List when no positive limit is given.
const DefaultReviewLimit = 10

// Reviews manages reviews and keeps their usefulness in line with the votes.
type Reviews struct {
	store repository.Store
	feed  *FeedRecorder
}

// NewReviews returns a Reviews service over store.
func NewReviews(store repository.Store, feed *FeedRecorder) *Reviews {
	return &Reviews{store: store, feed: feed}
}

// Usefulness is likes minus dislikes over the given votes.
func Usefulness(votes []model.ReviewVote) int {
	n := 0
	for _, v := range votes {
		if v.Like {
			n++
		} else {
			n--
		}
	}
	return n
}

func (s *Reviews) review(ctx context.Context, id uint64) (model.Review, error) {
	rv, err := s.store.GetReview(ctx, id)
	if err != nil {
		return model.Review{}, storeErr(err, EntityReview, id)
	}
	return rv, nil
}

func (s *Reviews) requireUser(ctx context.Context, id uint64) error {
	ok, err := s.store.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityUser, id)
	}
	return nil
}

// recount recomputes usefulness from the stored votes and writes it when
// it differs from rv.Useful or when force is set.
func (s *Reviews) recount(ctx context.Context, rv *model.Review, force bool) error {
	votes, err := s.store.ReviewVotes(ctx, rv.ID)
	if err != nil {
		return err
	}
	useful := Usefulness(votes)
	if useful == rv.Useful && !force {
		return nil
	}
	if err := s.store.SetUseful(ctx, rv.ID, useful); err != nil {
		return storeErr(err, EntityReview, rv.ID)
	}
	rv.Useful = useful
	return nil
}

// Vote records a like (positive) or dislike of userID on the review,
// replacing any earlier vote of that user.
func (s *Reviews) Vote(ctx context.Context, reviewID, userID uint64, positive bool) (model.Review, error) {
	rv, err := s.review(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return model.Review{}, err
	}
	if err := s.store.PutReviewVote(ctx, model.ReviewVote{ReviewID: reviewID, UserID: userID, Like: positive}); err != nil {
		return model.Review{}, storeErr(err, EntityReview, reviewID)
	}
	if err := s.recount(ctx, &rv, false); err != nil {
		return model.Review{}, err
	}
	logging.Debug().Uint64("review_id", reviewID).Uint64("user_id", userID).Bool("like", positive).
		Int("useful", rv.Useful).Msg("review vote")
	return rv, nil
}

// RetractVote removes the user's vote of the given polarity if it exists.
func (s *Reviews) RetractVote(ctx context.Context, reviewID, userID uint64, positive bool) (model.Review, error) {
	rv, err := s.review(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return model.Review{}, err
	}
	if _, err := s.store.DeleteReviewVote(ctx, model.ReviewVote{ReviewID: reviewID, UserID: userID, Like: positive}); err != nil {
		return model.Review{}, err
	}
	if err := s.recount(ctx, &rv, true); err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

// List returns up to limit reviews of filmID, or of all films when filmID
// is 0, most useful first.
func (s *Reviews) List(ctx context.Context, filmID uint64, limit int) ([]model.Review, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	if filmID != 0 {
		ok, err := s.store.FilmExists(ctx, filmID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(EntityFilm, filmID)
		}
	}
	reviews, err := s.store.ListReviews(ctx, filmID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].Useful != reviews[j].Useful {
			return reviews[i].Useful > reviews[j].Useful
		}
		return reviews[i].ID < reviews[j].ID
	})
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

// Get returns one review.
func (s *Reviews) Get(ctx context.Context, id uint64) (model.Review, error) {
	return s.review(ctx, id)
}

func checkReview(rv *model.Review) error {
	if strings.TrimSpace(rv.Content) == "" {
		return validationf("review content must not be blank")
	}
	if rv.IsPositive == nil {
		return validationf("review polarity is required")
	}
	return nil
}

// Create stores a new review and records REVIEW/ADD for its author.
func (s *Reviews) Create(ctx context.Context, rv *model.Review) error {
	if err := checkReview(rv); err != nil {
		return err
	}
	if err := s.requireUser(ctx, rv.UserID); err != nil {
		return err
	}
	ok, err := s.store.FilmExists(ctx, rv.FilmID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(EntityFilm, rv.FilmID)
	}
	if err := s.store.CreateReview(ctx, rv); err != nil {
		return storeErr(err, EntityFilm, rv.FilmID)
	}
	return s.feed.Record(ctx, rv.UserID, model.EventReview, model.OpAdd, rv.ID)
}

// Update changes the content and polarity of a review and records
// REVIEW/UPDATE for its author.
func (s *Reviews) Update(ctx context.Context, rv *model.Review) error {
	if err := checkReview(rv); err != nil {
		return err
	}
	if _, err := s.review(ctx, rv.ID); err != nil {
		return err
	}
	if err := s.store.UpdateReview(ctx, rv); err != nil {
		return storeErr(err, EntityReview, rv.ID)
	}
	return s.feed.Record(ctx, rv.UserID, model.EventReview, model.OpUpdate, rv.ID)
}

// Delete removes a review and records REVIEW/REMOVE for its author.
func (s *Reviews) Delete(ctx context.Context, id uint64) error {
	rv, err := s.review(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return storeErr(err, EntityReview, id)
	}
	return s.feed.Record(ctx, rv.UserID, model.EventReview, model.OpRemove, id)
}
