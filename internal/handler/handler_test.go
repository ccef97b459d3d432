package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository/memory"
	"github.com/iliyamo/filmorate/internal/router"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	h := handler.New(handler.NewServices(memory.New(), nil))
	return &api{t: t, e: router.New(h, router.Options{}, middleware.RequestLogger())}
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// ok performs the request, requires 200 and decodes the body into out.
func (a *api) ok(method, path, body string, out interface{}) {
	a.t.Helper()
	rec := a.do(method, path, body)
	require.Equal(a.t, http.StatusOK, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func (a *api) user(login string) model.User {
	a.t.Helper()
	var u model.User
	a.ok(http.MethodPost, "/users",
		`{"email":"`+login+`@mail.test","login":"`+login+`","birthday":"1990-05-17"}`, &u)
	return u
}

func (a *api) film(title string) model.Film {
	a.t.Helper()
	var f model.Film
	a.ok(http.MethodPost, "/films",
		`{"name":"`+title+`","description":"d","releaseDate":"2001-02-03","duration":90,"mpa":{"id":1},"genres":[{"id":2},{"id":1},{"id":2}]}`, &f)
	return f
}

func idPath(parts ...interface{}) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case uint64:
			b.WriteString(strconv.FormatUint(v, 10))
		}
	}
	return b.String()
}

func jsonUint(v uint64) string { return strconv.FormatUint(v, 10) }

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestCreateUserDefaultsNameToLogin(t *testing.T) {
	a := newAPI(t)
	u := a.user("neo")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "neo", u.Name)
	assert.Equal(t, "1990-05-17", u.Birthday.String())
}

func TestCreateUserValidation(t *testing.T) {
	a := newAPI(t)
	cases := map[string]string{
		"login with space": `{"email":"a@b.test","login":"two words","birthday":"1990-01-01"}`,
		"bad email":        `{"email":"nope","login":"x","birthday":"1990-01-01"}`,
		"future birthday":  `{"email":"a@b.test","login":"x","birthday":"2999-01-01"}`,
		"malformed json":   `{"email":`,
		"bad date":         `{"email":"a@b.test","login":"x","birthday":"01.01.1990"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/users", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestDuplicateLoginIsConflict(t *testing.T) {
	a := newAPI(t)
	a.user("trinity")
	rec := a.do(http.MethodPost, "/users", `{"email":"t@x.test","login":"trinity","birthday":"1990-01-01"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownIDsAreNotFound(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/users/99", "/films/99", "/genres/99", "/mpa/99", "/directors/99", "/reviews/99", "/users/99/feed"} {
		rec := a.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestMalformedIDIsBadRequest(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/users/abc", "/films/0", "/films/1/like/-1"} {
		method := http.MethodGet
		if strings.Contains(path, "like") {
			method = http.MethodPut
		}
		rec := a.do(method, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestFilmCreateNormalizesGenres(t *testing.T) {
	a := newAPI(t)
	f := a.film("Heat")
	require.Len(t, f.Genres, 2)
	assert.Equal(t, uint64(1), f.Genres[0].ID)
	assert.Equal(t, "Comedy", f.Genres[0].Name)
	assert.Equal(t, "G", f.Rating.Name)

	rec := a.do(http.MethodPost, "/films", `{"name":"Old","description":"d","releaseDate":"1890-01-01","duration":10,"mpa":{"id":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodPost, "/films", `{"name":"NoRating","description":"d","releaseDate":"2000-01-01","duration":10,"mpa":{"id":42}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikesAndPopular(t *testing.T) {
	a := newAPI(t)
	u1, u2 := a.user("u1"), a.user("u2")
	f1, f2 := a.film("One"), a.film("Two")

	a.ok(http.MethodPut, idPath("/films/", f2.ID, "/like/", u1.ID), "", nil)
	a.ok(http.MethodPut, idPath("/films/", f2.ID, "/like/", u2.ID), "", nil)
	a.ok(http.MethodPut, idPath("/films/", f1.ID, "/like/", u1.ID), "", nil)
	a.ok(http.MethodPut, idPath("/films/", f1.ID, "/like/", u1.ID), "", nil)

	var popular []model.Film
	a.ok(http.MethodGet, "/films/popular?count=1", "", &popular)
	require.Len(t, popular, 1)
	assert.Equal(t, f2.ID, popular[0].ID)
	assert.Len(t, popular[0].LikedBy, 2)

	rec := a.do(http.MethodGet, "/films/popular?count=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a.ok(http.MethodDelete, idPath("/films/", f1.ID, "/like/", u1.ID), "", nil)
	rec = a.do(http.MethodDelete, idPath("/films/", f1.ID, "/like/", u1.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "removing a missing like")

	var common []model.Film
	a.ok(http.MethodGet, idPath("/films/common?userId=", u1.ID, "&friendId=", u2.ID), "", &common)
	require.Len(t, common, 1)
	assert.Equal(t, f2.ID, common[0].ID)

	rec = a.do(http.MethodGet, "/films/common?userId=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFriendsFlowAndFeed(t *testing.T) {
	a := newAPI(t)
	u1, u2, u3 := a.user("a"), a.user("b"), a.user("c")

	a.ok(http.MethodPut, idPath("/users/", u1.ID, "/friends/", u3.ID), "", nil)
	a.ok(http.MethodPut, idPath("/users/", u2.ID, "/friends/", u3.ID), "", nil)

	var friends []model.User
	a.ok(http.MethodGet, idPath("/users/", u1.ID, "/friends"), "", &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, u3.ID, friends[0].ID)

	var common []model.User
	a.ok(http.MethodGet, idPath("/users/", u1.ID, "/friends/common/", u2.ID), "", &common)
	require.Len(t, common, 1)
	assert.Equal(t, u3.ID, common[0].ID)

	rec := a.do(http.MethodPut, idPath("/users/", u1.ID, "/friends/", u1.ID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodPut, idPath("/users/", u1.ID, "/friends/", uint64(999)), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	a.ok(http.MethodDelete, idPath("/users/", u1.ID, "/friends/", u3.ID), "", nil)

	var feed []model.FeedEvent
	a.ok(http.MethodGet, idPath("/users/", u1.ID, "/feed"), "", &feed)
	require.Len(t, feed, 2)
	assert.Equal(t, model.EventFriend, feed[0].EventType)
	assert.Equal(t, model.OpAdd, feed[0].Operation)
	assert.Equal(t, model.OpRemove, feed[1].Operation)
	assert.Equal(t, u3.ID, feed[1].EntityID)
}

func TestRecommendations(t *testing.T) {
	a := newAPI(t)
	u1, u2 := a.user("x1"), a.user("x2")
	f1, f2 := a.film("Shared"), a.film("Extra")

	a.ok(http.MethodPut, idPath("/films/", f1.ID, "/like/", u1.ID), "", nil)
	a.ok(http.MethodPut, idPath("/films/", f1.ID, "/like/", u2.ID), "", nil)
	a.ok(http.MethodPut, idPath("/films/", f2.ID, "/like/", u2.ID), "", nil)

	var recs []model.Film
	a.ok(http.MethodGet, idPath("/users/", u1.ID, "/recommendations"), "", &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, f2.ID, recs[0].ID)
}

func TestDirectorsSearchAndSort(t *testing.T) {
	a := newAPI(t)
	var d model.Director
	a.ok(http.MethodPost, "/directors", `{"name":"Ridley Scott"}`, &d)
	require.NotZero(t, d.ID)

	rec := a.do(http.MethodPost, "/directors", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"name":"Alien","description":"d","releaseDate":"1979-05-25","duration":117,"mpa":{"id":4},"directors":[{"id":` + jsonUint(d.ID) + `}]}`
	var alien model.Film
	a.ok(http.MethodPost, "/films", body, &alien)
	require.Len(t, alien.Directors, 1)
	assert.Equal(t, "Ridley Scott", alien.Directors[0].Name)
	a.film("Aliens Unrelated")

	var byDirector []model.Film
	a.ok(http.MethodGet, "/films/search?query=scOTT&by=director", "", &byDirector)
	require.Len(t, byDirector, 1)
	assert.Equal(t, alien.ID, byDirector[0].ID)

	var byTitle []model.Film
	a.ok(http.MethodGet, "/films/search?query=alien", "", &byTitle)
	assert.Len(t, byTitle, 2)

	rec = a.do(http.MethodGet, "/films/search?query=x&by=genre", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var films []model.Film
	a.ok(http.MethodGet, idPath("/films/director/", d.ID, "?sortBy=likes"), "", &films)
	assert.Len(t, films, 1)
	rec = a.do(http.MethodGet, idPath("/films/director/", d.ID, "?sortBy=rating"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodGet, "/films/director/999?sortBy=year", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewVotes(t *testing.T) {
	a := newAPI(t)
	author, voter := a.user("author"), a.user("voter")
	f := a.film("Reviewed")

	var rv model.Review
	a.ok(http.MethodPost, "/reviews",
		`{"content":"great","isPositive":true,"userId":`+jsonUint(author.ID)+`,"filmId":`+jsonUint(f.ID)+`}`, &rv)
	require.NotZero(t, rv.ID)
	assert.Equal(t, 0, rv.Useful)

	rec := a.do(http.MethodPost, "/reviews", `{"content":"no polarity","userId":1,"filmId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var voted model.Review
	a.ok(http.MethodPut, idPath("/reviews/", rv.ID, "/dislike/", voter.ID), "", &voted)
	assert.Equal(t, -1, voted.Useful)
	a.ok(http.MethodPut, idPath("/reviews/", rv.ID, "/like/", voter.ID), "", &voted)
	assert.Equal(t, 1, voted.Useful)
	a.ok(http.MethodDelete, idPath("/reviews/", rv.ID, "/like/", voter.ID), "", &voted)
	assert.Equal(t, 0, voted.Useful)

	var list []model.Review
	a.ok(http.MethodGet, idPath("/reviews?filmId=", f.ID, "&count=5"), "", &list)
	require.Len(t, list, 1)

	var updated model.Review
	a.ok(http.MethodPut, "/reviews",
		`{"reviewId":`+jsonUint(rv.ID)+`,"content":"meh","isPositive":false}`, &updated)
	assert.Equal(t, "meh", updated.Content)
	assert.Equal(t, author.ID, updated.UserID)

	a.ok(http.MethodDelete, idPath("/reviews/", rv.ID), "", nil)
	rec = a.do(http.MethodGet, idPath("/reviews/", rv.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var feed []model.FeedEvent
	a.ok(http.MethodGet, idPath("/users/", author.ID, "/feed"), "", &feed)
	ops := make([]model.Operation, 0, len(feed))
	for _, e := range feed {
		assert.Equal(t, model.EventReview, e.EventType)
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []model.Operation{model.OpAdd, model.OpUpdate, model.OpRemove}, ops)
}

func TestDictionaries(t *testing.T) {
	a := newAPI(t)
	var genres []model.Genre
	a.ok(http.MethodGet, "/genres", "", &genres)
	assert.Len(t, genres, len(memory.Genres))

	var r model.Rating
	a.ok(http.MethodGet, "/mpa/3", "", &r)
	assert.Equal(t, "PG-13", r.Name)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodGet, "/genres", "")
	rec := a.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filmorate_http_requests_total")
}
