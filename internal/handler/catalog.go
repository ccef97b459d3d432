package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
)

// ListGenres handles GET /genres.
func (h *Handler) ListGenres(c echo.Context) error {
	genres, err := h.svc.Catalog.ListGenres(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, genres)
}

// GetGenre handles GET /genres/:id.
func (h *Handler) GetGenre(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	g, err := h.svc.Catalog.GetGenre(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// ListRatings handles GET /mpa.
func (h *Handler) ListRatings(c echo.Context) error {
	ratings, err := h.svc.Catalog.ListRatings(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ratings)
}

// GetRating handles GET /mpa/:id.
func (h *Handler) GetRating(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	r, err := h.svc.Catalog.GetRating(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateDirector(c echo.Context) error {
	var d model.Director
	if err := bindValid(c, &d); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.CreateDirector(c.Request().Context(), &d); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDirector(c echo.Context) error {
	var d model.Director
	if err := bindValid(c, &d); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.UpdateDirector(c.Request().Context(), &d); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDirectors(c echo.Context) error {
	ds, err := h.svc.Catalog.ListDirectors(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ds)
}

func (h *Handler) GetDirector(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	d, err := h.svc.Catalog.GetDirector(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDirector(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.DeleteDirector(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}
