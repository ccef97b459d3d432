package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/config"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateKeyStrategies(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/films/3")
	c.SetPath("/films/:id")

	cases := map[string]string{
		"ip":       "rl:ip:10.0.0.7",
		"route":    "rl:route:GET /films/:id",
		"ip_route": "rl:ip:10.0.0.7:route:GET /films/:id",
		"":         "rl:ip:10.0.0.7:route:GET /films/:id",
	}
	for strategy, want := range cases {
		got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		assert.Equal(t, want, got, strategy)
	}
}

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	c, rec := newContext(http.MethodGet, "/genres")
	for i := 0; i < 3; i++ {
		require.NoError(t, mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
	}
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Extra": {"a", "b"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[{"id":1}]`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `[{"id":1}]`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, '{'))
	assert.False(t, ok, "header length past the end")
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "c", KeyStrategy: "route_query"}
	a, _ := newContext(http.MethodGet, "/genres?x=1")
	b, _ := newContext(http.MethodGet, "/genres?x=2")
	assert.NotEqual(t, cacheKey(cfg, a), cacheKey(cfg, b))

	a2, _ := newContext(http.MethodGet, "/genres?x=1")
	assert.Equal(t, cacheKey(cfg, a), cacheKey(cfg, a2))
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(RequestIDKey).(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	id := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLoggerRendersHandlerErrors(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
