package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hbenali/storefront/internal/events"
	"github.com/hbenali/storefront/internal/logging"
	middlewareauth "github.com/hbenali/storefront/internal/middleware/auth"
	"github.com/hbenali/storefront/internal/models"
	"github.com/hbenali/storefront/internal/store"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CartHandler struct {
	Store    *store.Store
	Producer *events.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any, userID uint) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := middlewareauth.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return user, nil
}

// CreateCart creates a cart for the authenticated user only if none exists.
func (h *CartHandler) CreateCart(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.Store.CartIDForUser(ctx, user.ID); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cart, err := h.Store.CreateCart(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := h.Store.AssignCartToUser(ctx, user.ID, cart.ID); err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":    "cart_created",
		"user_id": user.ID,
		"cart_id": cart.ID,
	}, user.ID)

	return c.JSON(http.StatusCreated, echo.Map{"id": cart.ID})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	rows, err := h.Store.CartRowsForUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if user.CartID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart does not exist")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// A duplicate (cart_id, product_id) pair fails on the unique index and
	// surfaces as a storage error; there is deliberately no upsert.
	item, err := h.Store.CreateCartItem(c.Request().Context(), *user.CartID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":       "cart_item_added",
		"user_id":    user.ID,
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	}, user.ID)

	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if user.CartID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart does not exist")
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Store.UpdateCartItem(c.Request().Context(), *user.CartID, uint(productID), req.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return err
	}

	h.publish(c, map[string]any{
		"type":       "cart_item_updated",
		"user_id":    user.ID,
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	}, user.ID)

	return c.JSON(http.StatusOK, item)
}

// DeleteItem is idempotent: 204 whether or not the row existed.
func (h *CartHandler) DeleteItem(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if user.CartID == nil {
		return c.NoContent(http.StatusNoContent)
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Store.DeleteCartItem(c.Request().Context(), *user.CartID, uint(productID)); err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":       "cart_item_removed",
		"user_id":    user.ID,
		"cart_id":    *user.CartID,
		"product_id": productID,
	}, user.ID)

	return c.NoContent(http.StatusNoContent)
}

// DeleteCart tears the cart down atomically: user reference, items and the
// cart row all go in one transaction.
func (h *CartHandler) DeleteCart(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if user.CartID == nil {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.Store.DeleteCart(c.Request().Context(), *user.CartID); err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":    "cart_deleted",
		"user_id": user.ID,
		"cart_id": *user.CartID,
	}, user.ID)

	return c.NoContent(http.StatusNoContent)
}
