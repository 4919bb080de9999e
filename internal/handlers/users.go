package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hbenali/storefront/internal/auth"
	"github.com/hbenali/storefront/internal/events"
	"github.com/hbenali/storefront/internal/hash"
	"github.com/hbenali/storefront/internal/logging"
	middlewareauth "github.com/hbenali/storefront/internal/middleware/auth"
	"github.com/hbenali/storefront/internal/models"
	"github.com/hbenali/storefront/internal/session"
	"github.com/hbenali/storefront/internal/store"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type UserHandler struct {
	Store    *store.Store
	Verifier *auth.Verifier
	Sessions *session.Manager
	Producer *events.Producer
}

func (h *UserHandler) publish(c echo.Context, event map[string]any, userID uint) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.Store.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()

	_, err := h.Store.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	if err := h.Store.CreateUser(ctx, &user); err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	}, user.ID)

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	ctx := c.Request().Context()

	user, err := h.Verifier.Verify(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownEmail) || errors.Is(err, auth.ErrWrongPassword) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		return err
	}

	// First login creates the cart and binds it to the user row.
	if _, err := h.Store.CartIDForUser(ctx, user.ID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		cart, err := h.Store.CreateCart(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := h.Store.AssignCartToUser(ctx, user.ID, cart.ID); err != nil {
			return err
		}
	}

	if err := h.Sessions.Bind(c, user.ID); err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	}, user.ID)

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged in successfully"})
}

func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Clear(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *UserHandler) Profile(c echo.Context) error {
	user, ok := middlewareauth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile is a placeholder: the profile update contract is out of
// scope, so the handler acknowledges without touching anything.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Store.DeleteUser(c.Request().Context(), uint(id)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
