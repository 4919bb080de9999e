// Package auth gates protected routes behind a resolved session principal.
package auth

import (
	"errors"
	"net/http"

	"github.com/hbenali/storefront/internal/models"
	"github.com/hbenali/storefront/internal/session"
	"github.com/hbenali/storefront/internal/store"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const userContextKey = "user"

type Guard struct {
	Sessions *session.Manager
	Store    *store.Store
}

// RequireLogin rejects the request with 401 unless the session carries a
// principal that still resolves to a user row. The lookup is deliberately
// fresh on every request: a deleted user is unauthenticated immediately.
func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := g.Sessions.UserID(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		user, err := g.Store.GetUserByID(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return err
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// CurrentUser returns the principal resolved by RequireLogin.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userContextKey).(*models.User)
	return user, ok
}
