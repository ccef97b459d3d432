package model

// Review is a user's written opinion of a film. Useful is derived from the
// review votes and is never set by callers.
type Review struct {
	ID         uint64 `json:"reviewId"`
	Content    string `json:"content" validate:"required"`
	IsPositive *bool  `json:"isPositive" validate:"required"`
	UserID     uint64 `json:"userId" validate:"required"`
	FilmID     uint64 `json:"filmId" validate:"required"`
	Useful     int    `json:"useful"`
}

// Positive dereferences IsPositive, treating nil as false.
func (r Review) Positive() bool { return r.IsPositive != nil && *r.IsPositive }

// ReviewVote is one user's like or dislike of a review. A (review, user)
// pair holds at most one vote.
type ReviewVote struct {
	ReviewID uint64
	UserID   uint64
	Like     bool
}
