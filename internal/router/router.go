// Package router registers the API routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/validation"
)

// Options carries the pieces RegisterRoutes wires besides the handler.
type Options struct {
	// Health backs GET /healthz.
	Health echo.HandlerFunc
	// DictionaryCache wraps the genre and MPA routes. Nil means no cache.
	DictionaryCache echo.MiddlewareFunc
}

// RegisterRoutes maps every API route to h.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, opts Options) {
	health := opts.Health
	if health == nil {
		health = handler.Health(nil)
	}
	e.GET("/healthz", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	registerUsers(e.Group("/users"), h)
	registerFilms(e.Group("/films"), h)
	registerReviews(e.Group("/reviews"), h)

	d := e.Group("/directors")
	d.POST("", h.CreateDirector)
	d.PUT("", h.UpdateDirector)
	d.GET("", h.ListDirectors)
	d.GET("/:id", h.GetDirector)
	d.DELETE("/:id", h.DeleteDirector)

	var dict []echo.MiddlewareFunc
	if opts.DictionaryCache != nil {
		dict = append(dict, opts.DictionaryCache)
	}
	g := e.Group("/genres", dict...)
	g.GET("", h.ListGenres)
	g.GET("/:id", h.GetGenre)
	m := e.Group("/mpa", dict...)
	m.GET("", h.ListRatings)
	m.GET("/:id", h.GetRating)
}

func registerUsers(g *echo.Group, h *handler.Handler) {
	g.POST("", h.CreateUser)
	g.PUT("", h.UpdateUser)
	g.GET("", h.ListUsers)
	g.GET("/:id", h.GetUser)
	g.DELETE("/:id", h.DeleteUser)

	g.PUT("/:id/friends/:friendId", h.AddFriend)
	g.DELETE("/:id/friends/:friendId", h.RemoveFriend)
	g.GET("/:id/friends", h.Friends)
	g.GET("/:id/friends/common/:otherId", h.CommonFriends)
	g.GET("/:id/recommendations", h.Recommendations)
	g.GET("/:id/feed", h.Feed)
}

func registerFilms(g *echo.Group, h *handler.Handler) {
	g.POST("", h.CreateFilm)
	g.PUT("", h.UpdateFilm)
	g.GET("", h.ListFilms)
	// Static segments are matched before /:id by the Echo router.
	g.GET("/popular", h.PopularFilms)
	g.GET("/common", h.CommonFilms)
	g.GET("/search", h.SearchFilms)
	g.GET("/director/:directorId", h.DirectorFilms)
	g.GET("/:id", h.GetFilm)
	g.DELETE("/:id", h.DeleteFilm)

	g.PUT("/:id/like/:userId", h.AddLike)
	g.DELETE("/:id/like/:userId", h.RemoveLike)
}

func registerReviews(g *echo.Group, h *handler.Handler) {
	g.POST("", h.CreateReview)
	g.PUT("", h.UpdateReview)
	g.GET("", h.ListReviews)
	g.GET("/:id", h.GetReview)
	g.DELETE("/:id", h.DeleteReview)

	g.PUT("/:id/like/:userId", h.VoteReview(true))
	g.PUT("/:id/dislike/:userId", h.VoteReview(false))
	g.DELETE("/:id/like/:userId", h.RetractReviewVote(true))
	g.DELETE("/:id/dislike/:userId", h.RetractReviewVote(false))
}

// New builds an Echo instance with the JSON serializer, the validator and
// the given middleware installed, and registers every route.
func New(h *handler.Handler, opts Options, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Validator = validation.EchoValidator{}
	e.Use(mw...)
	RegisterRoutes(e, h, opts)
	return e
}
