package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"business-admin/internal/handler"
	"business-admin/internal/model"
)

// UserResolver finds the user behind a request.
type UserResolver interface {
	GetCurrentUser(c echo.Context) (*model.User, error)
}

// AuthMiddleware rejects requests without a user and stores the user on the
// context for the handlers.
func AuthMiddleware(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := users.GetCurrentUser(c)
			if err != nil {
				return handler.Fail(c, http.StatusUnauthorized, "Unauthorized")
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}
