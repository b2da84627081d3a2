// Package addresses serves standalone address CRUD.
package addresses

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/address"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo address.AddressRepository
}

func NewHandler(repo address.AddressRepository) *Handler {
	return &Handler{repo: repo}
}

// Register registers address routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists addresses
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.AddressListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates an address
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.AddressResponse{Address: *result})
}

// Get returns a single address
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.AddressResponse{Address: *result})
}

// Update updates an address
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.AddressResponse{Address: *result})
}

// Delete soft deletes an address
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
