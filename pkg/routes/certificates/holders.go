// Package certificates serves certificate holders, master certificate
// templates, and issued certificates with their rendered documents.
package certificates

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/certificate"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type HolderHandler struct {
	repo certificate.CertificateHolderRepository
}

func NewHolderHandler(repo certificate.CertificateHolderRepository) *HolderHandler {
	return &HolderHandler{repo: repo}
}

// Register registers certificate holder routes
func (h *HolderHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists certificate holders
func (h *HolderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.CertificateHolderListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a certificate holder
func (h *HolderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateCertificateHolderRequest
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

	return c.JSON(http.StatusCreated, models.CertificateHolderResponse{CertificateHolder: *result})
}

// Get returns a single certificate holder
func (h *HolderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CertificateHolderResponse{CertificateHolder: *result})
}

// Update updates a certificate holder
func (h *HolderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateCertificateHolderRequest
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

	return c.JSON(http.StatusOK, models.CertificateHolderResponse{CertificateHolder: *result})
}

// Delete soft deletes a certificate holder
func (h *HolderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
