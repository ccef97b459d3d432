// Package handler exposes the film catalogue, the social graph and the
// review board over HTTP. Handlers only parse requests and render
// responses; every rule lives in the service package.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/validation"
)

// Services bundles the collaborators the handlers call into.
type Services struct {
	Catalog     *service.Catalog
	Graph       *service.Graph
	Ranking     *service.Ranking
	Recommender *service.Recommender
	Searcher    *service.Searcher
	Reviews     *service.Reviews
	Feed        *service.FeedRecorder
}

// Handler serves every API route.
type Handler struct {
	svc Services
}

// New returns a Handler and panics if a service is missing.
func New(svc Services) *Handler {
	if svc.Catalog == nil || svc.Graph == nil || svc.Ranking == nil || svc.Recommender == nil ||
		svc.Searcher == nil || svc.Reviews == nil || svc.Feed == nil {
		panic("nil service passed to handler.New")
	}
	return &Handler{svc: svc}
}

// statusOf maps an error returned by a service to an HTTP status.
func statusOf(err error) int {
	var he *echo.HTTPError
	var verr *validation.Error
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.As(err, &verr),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidParameter),
		errors.Is(err, service.ErrDuplicateLike):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEntityNotFound), errors.Is(err, service.ErrLikeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail renders err as {"error": message}. Unexpected errors are logged and
// their text is not sent to the client.
func fail(c echo.Context, err error) error {
	status := statusOf(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Interface("request_id", c.Get(middleware.RequestIDKey)).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
		msg = "internal server error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func invalidParam(name, raw string) error {
	return fmt.Errorf("%w: %s must be a positive integer, got %q", service.ErrInvalidParameter, name, raw)
}

// pathID parses a positive id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, invalidParam(name, raw)
	}
	return id, nil
}

// pathIDs parses two id path parameters.
func pathIDs(c echo.Context, a, b string) (uint64, uint64, error) {
	x, err := pathID(c, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := pathID(c, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// queryUint parses an optional non-negative query parameter.
func queryUint(c echo.Context, name string, def uint64) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", service.ErrInvalidParameter, name, raw)
	}
	return n, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", service.ErrInvalidParameter, name, raw)
	}
	return n, nil
}

// bindValid decodes the JSON body into v and runs the struct validator.
func bindValid(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return err
	}
	return c.Validate(v)
}

// NewServices builds the service layer over one store with a shared feed
// recorder.
func NewServices(store repository.Store, feedOpts []service.FeedOption, graphOpts ...service.GraphOption) Services {
	feed := service.NewFeedRecorder(store, feedOpts...)
	return Services{
		Catalog:     service.NewCatalog(store),
		Graph:       service.NewGraph(store, feed, graphOpts...),
		Ranking:     service.NewRanking(store),
		Recommender: service.NewRecommender(store),
		Searcher:    service.NewSearcher(store),
		Reviews:     service.NewReviews(store, feed),
		Feed:        feed,
	}
}
