package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sama2911arth/Travisco/internal/auth"
	"github.com/Sama2911arth/Travisco/internal/auth/entity"
	"github.com/Sama2911arth/Travisco/internal/web"
)

type nopAuth struct{}

func (nopAuth) SignInWithPassword(ctx context.Context, email, password string) (*entity.Grant, error) {
	return &entity.Grant{User: &entity.User{ID: "u1", Email: email}}, nil
}

func (nopAuth) SignOut(ctx context.Context, accessToken string) error { return nil }

type staticData struct{}

func (staticData) Monuments(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[{"id":1,"name":"Arc"}]`), nil
}

func (staticData) Community(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"message":"No community posts available."}`), nil
}

func (staticData) CommunityByMonument(ctx context.Context, name string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func newTestRouter(t *testing.T, limiter *RateLimiter) (http.Handler, *auth.Store) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	store := auth.NewStore(auth.StoreConfig{}, nopAuth{}, logger)
	codec := auth.NewCookieCodec(auth.CookieConfig{Secret: []byte("s"), MaxAge: time.Hour})
	sessions := auth.NewProvider(store, codec, logger)
	h, err := web.NewHandler(staticData{}, sessions, logger)
	require.NoError(t, err)
	return RegisterRoutes(logger, Deps{
		Web:          h,
		Sessions:     sessions,
		LoginLimiter: limiter,
	}), store
}

func TestHealth(t *testing.T) {
	handler, store := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSecurityHeaders(t *testing.T) {
	handler, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRequestID(t *testing.T) {
	handler, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestPagesRenderWithoutStoringSession(t *testing.T) {
	handler, store := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/monuments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-page="monuments"`)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, rec.Result().Cookies())
}

func TestCookielessTrafficHoldsNoSessions(t *testing.T) {
	handler, store := newTestRouter(t, nil)

	for i := 0; i < 200; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere-"+strconv.Itoa(i), nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 0, store.Len())
}

func TestLoginStoresOneSession(t *testing.T) {
	handler, store := newTestRouter(t, nil)

	form := url.Values{"email": {"a@b.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, store.Len())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t, nil)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/community", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "travisco_http_requests_total")
}

func TestLoginRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler, _ := newTestRouter(t, NewRateLimiter(ctx, rate.Limit(1), 1))

	post := func() *httptest.ResponseRecorder {
		form := url.Values{"email": {"a@b.com"}, "password": {"pw"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusSeeOther, post().Code)
	second := post()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_SeparateIPs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, rate.Limit(1), 1)
	h := rl.Middleware(http.MethodGet, "/x")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/monuments", routeLabel("/monuments"))
	assert.Equal(t, "/static/", routeLabel("/static/app.css"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOGIN_RATE_PER_SEC", "0.5")
	t.Setenv("LOGIN_RATE_BURST", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
	assert.Equal(t, 0.5, cfg.LoginRate)
	assert.Equal(t, 5, cfg.LoginBurst)
}
