package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/service"
)

// DefaultPopularCount is the size of /films/popular without ?count.
const DefaultPopularCount = 10

// CreateFilm handles POST /films.
func (h *Handler) CreateFilm(c echo.Context) error {
	var f model.Film
	if err := bindValid(c, &f); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.CreateFilm(c.Request().Context(), &f); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// UpdateFilm handles PUT /films. The body carries the id.
func (h *Handler) UpdateFilm(c echo.Context) error {
	var f model.Film
	if err := bindValid(c, &f); err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.UpdateFilm(c.Request().Context(), &f); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// ListFilms handles GET /films.
func (h *Handler) ListFilms(c echo.Context) error {
	films, err := h.svc.Catalog.ListFilms(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// GetFilm handles GET /films/:id.
func (h *Handler) GetFilm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	f, err := h.svc.Catalog.GetFilm(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// DeleteFilm handles DELETE /films/:id.
func (h *Handler) DeleteFilm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Catalog.DeleteFilm(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// AddLike handles PUT /films/:id/like/:userId.
func (h *Handler) AddLike(c echo.Context) error {
	filmID, userID, err := pathIDs(c, "id", "userId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Graph.AddLike(c.Request().Context(), userID, filmID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// RemoveLike handles DELETE /films/:id/like/:userId.
func (h *Handler) RemoveLike(c echo.Context) error {
	filmID, userID, err := pathIDs(c, "id", "userId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Graph.RemoveLike(c.Request().Context(), userID, filmID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// PopularFilms handles GET /films/popular?count=&genreId=&year=.
func (h *Handler) PopularFilms(c echo.Context) error {
	count, err := queryInt(c, "count", DefaultPopularCount)
	if err != nil {
		return fail(c, err)
	}
	genreID, err := queryUint(c, "genreId", 0)
	if err != nil {
		return fail(c, err)
	}
	year, err := queryInt(c, "year", 0)
	if err != nil {
		return fail(c, err)
	}
	films, err := h.svc.Ranking.PopularFilms(c.Request().Context(), count, genreID, year)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// CommonFilms handles GET /films/common?userId=&friendId=.
func (h *Handler) CommonFilms(c echo.Context) error {
	userID, err := queryUint(c, "userId", 0)
	if err != nil {
		return fail(c, err)
	}
	friendID, err := queryUint(c, "friendId", 0)
	if err != nil {
		return fail(c, err)
	}
	if userID == 0 || friendID == 0 {
		return fail(c, fmt.Errorf("%w: userId and friendId are required", service.ErrInvalidParameter))
	}
	films, err := h.svc.Ranking.CommonFilms(c.Request().Context(), userID, friendID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// DirectorFilms handles GET /films/director/:directorId?sortBy=year|likes.
func (h *Handler) DirectorFilms(c echo.Context) error {
	id, err := pathID(c, "directorId")
	if err != nil {
		return fail(c, err)
	}
	sortBy := model.DirectorSort(strings.ToLower(c.QueryParam("sortBy")))
	if sortBy == "" {
		sortBy = model.SortByYear
	}
	films, err := h.svc.Ranking.DirectorFilms(c.Request().Context(), id, sortBy)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}

// SearchFilms handles GET /films/search?query=&by=title,director. by
// defaults to title.
func (h *Handler) SearchFilms(c echo.Context) error {
	raw := c.QueryParam("by")
	if raw == "" {
		raw = string(model.SearchByTitle)
	}
	by, err := model.ParseSearchBy(raw)
	if err != nil {
		return fail(c, fmt.Errorf("%w: %v", service.ErrInvalidParameter, err))
	}
	films, err := h.svc.Searcher.Search(c.Request().Context(), c.QueryParam("query"), by)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, films)
}
