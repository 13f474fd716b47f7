package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"business-admin/internal/handler"
	"business-admin/internal/model"
)

type resolverFunc func(c echo.Context) (*model.User, error)

func (f resolverFunc) GetCurrentUser(c echo.Context) (*model.User, error) {
	return f(c)
}

func serve(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	user := model.NewUser("g", "a@b.com", "A", "", "", time.Time{})
	var allowed bool

	e := echo.New()
	e.Use(AuthMiddleware(resolverFunc(func(c echo.Context) (*model.User, error) {
		if !allowed {
			return nil, errors.New("user not authenticated")
		}
		return user, nil
	})))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, handler.UserFrom(c).ID)
	})

	rec := serve(e, "10.0.0.1:1000")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	allowed = true
	rec = serve(e, "10.0.0.1:1000")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, rec.Body.String())
}

func TestRateLimitIsPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	e := echo.New()
	e.Use(RateLimit(rl))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1:1001").Code)
	limited := serve(e, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get(echo.HeaderRetryAfter))

	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.2:1000").Code)
}

func TestCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(staleAfter / 2)
	rl.Allow("b")
	now = now.Add(staleAfter/2 + time.Second)
	rl.cleanup()

	assert.NotContains(t, rl.visitors, "a")
	assert.Contains(t, rl.visitors, "b")
}
