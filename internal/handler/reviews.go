package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
)

// CreateReview handles POST /reviews.
func (h *Handler) CreateReview(c echo.Context) error {
	var rv model.Review
	if err := bindValid(c, &rv); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Reviews.Create(c.Request().Context(), &rv); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// UpdateReview handles PUT /reviews. Only content and polarity change;
// author and film are kept.
func (h *Handler) UpdateReview(c echo.Context) error {
	var rv model.Review
	if err := c.Bind(&rv); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Reviews.Update(c.Request().Context(), &rv); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// GetReview handles GET /reviews/:id.
func (h *Handler) GetReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	rv, err := h.svc.Reviews.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// DeleteReview handles DELETE /reviews/:id.
func (h *Handler) DeleteReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Reviews.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// ListReviews handles GET /reviews?filmId=&count=. Without filmId every
// review is ranked.
func (h *Handler) ListReviews(c echo.Context) error {
	filmID, err := queryUint(c, "filmId", 0)
	if err != nil {
		return fail(c, err)
	}
	count, err := queryInt(c, "count", 0)
	if err != nil {
		return fail(c, err)
	}
	reviews, err := h.svc.Reviews.List(c.Request().Context(), filmID, count)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// VoteReview returns the handler for PUT /reviews/:id/like|dislike/:userId.
func (h *Handler) VoteReview(positive bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, userID, err := pathIDs(c, "id", "userId")
		if err != nil {
			return fail(c, err)
		}
		rv, err := h.svc.Reviews.Vote(c.Request().Context(), id, userID, positive)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rv)
	}
}

// RetractReviewVote returns the handler for DELETE
// /reviews/:id/like|dislike/:userId.
func (h *Handler) RetractReviewVote(positive bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, userID, err := pathIDs(c, "id", "userId")
		if err != nil {
			return fail(c, err)
		}
		rv, err := h.svc.Reviews.RetractVote(c.Request().Context(), id, userID, positive)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rv)
	}
}
