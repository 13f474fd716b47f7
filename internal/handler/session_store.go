package handler

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"business-admin/internal/model"
)

// UserContextKey is where the auth middleware stores the current user.
const UserContextKey = "user"

// NewSessionStore creates a new cookie store for sessions
func NewSessionStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func UserFrom(c echo.Context) *model.User {
	user, _ := c.Get(UserContextKey).(*model.User)
	return user
}
