package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

// List returns the active catalog shaped for the caller's role.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {object}  productListResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	svc, err := productsFrom(c)
	if err != nil {
		return err
	}
	items, err := svc.ProductsCached(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Items: items, Count: len(items)})
}

// GetBySlug returns one active product shaped for the caller's role.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        slug  path      string  true  "Product slug"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  errorResponse
// @Router       /v1/products/{slug} [get]
func (h *ProductHandler) GetBySlug(c echo.Context) error {
	svc, err := productsFrom(c)
	if err != nil {
		return err
	}
	item, err := svc.ProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, item)
}

// ClearCache drops every cached catalog view. Admin only.
//
// @Summary      Clear product cache
// @Tags         admin
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/cache/clear [post]
func (h *ProductHandler) ClearCache(c echo.Context) error {
	svc, err := productsFrom(c)
	if err != nil {
		return err
	}
	svc.ClearCache()
	return c.NoContent(http.StatusNoContent)
}
