package handlers

import (
	"net/http"

	"github.com/hbenali/storefront/internal/store"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the read-only reference tables. Each endpoint dumps
// the full table in storage order; no pagination, no filtering.
type CatalogHandler struct {
	Store *store.Store
}

func (h *CatalogHandler) GetProducts(c echo.Context) error {
	products, err := h.Store.GetAllProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetCategories(c echo.Context) error {
	categories, err := h.Store.GetAllCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetOrders(c echo.Context) error {
	orders, err := h.Store.GetAllOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *CatalogHandler) GetReviews(c echo.Context) error {
	reviews, err := h.Store.GetAllReviews(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}
