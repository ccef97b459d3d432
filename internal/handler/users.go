package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
)

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c echo.Context) error {
	var u model.User
	if err := bindValid(c, &u); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.CreateUser(c.Request().Context(), &u); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateUser handles PUT /users. The body carries the id.
func (h *Handler) UpdateUser(c echo.Context) error {
	var u model.User
	if err := bindValid(c, &u); err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	if err := h.svc.Catalog.UpdateUser(ctx, &u); err != nil {
		return fail(c, err)
	}
	out, err := h.svc.Catalog.GetUser(ctx, u.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.Catalog.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	u, err := h.svc.Catalog.GetUser(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /users/:id.
func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.DeleteUser(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// AddFriend handles PUT /users/:id/friends/:friendId.
func (h *Handler) AddFriend(c echo.Context) error {
	id, friendID, err := pathIDs(c, "id", "friendId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Graph.RequestFriend(c.Request().Context(), id, friendID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// RemoveFriend handles DELETE /users/:id/friends/:friendId.
func (h *Handler) RemoveFriend(c echo.Context) error {
	id, friendID, err := pathIDs(c, "id", "friendId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Graph.RemoveFriend(c.Request().Context(), id, friendID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Friends handles GET /users/:id/friends.
func (h *Handler) Friends(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	users, err := h.svc.Graph.Friends(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CommonFriends handles GET /users/:id/friends/common/:otherId.
func (h *Handler) CommonFriends(c echo.Context) error {
	id, otherID, err := pathIDs(c, "id", "otherId")
	if err != nil {
		return fail(c, err)
	}
	users, err := h.svc.Graph.CommonFriends(c.Request().Context(), id, otherID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Recommendations handles GET /users/:id/recommendations.
func (h *Handler) Recommendations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	films, err := h.svc.Recommender.Recommend(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// Feed handles GET /users/:id/feed.
func (h *Handler) Feed(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	events, err := h.svc.Feed.Feed(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
