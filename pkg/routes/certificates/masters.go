package certificates

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/certificate"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

type MasterHandler struct {
	repo certificate.MasterCertificateRepository
}

func NewMasterHandler(repo certificate.MasterCertificateRepository) *MasterHandler {
	return &MasterHandler{repo: repo}
}

// Register registers master certificate routes
func (h *MasterHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists master certificates, optionally filtered by policy_id
func (h *MasterHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("policy_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.MasterCertificateListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a master certificate template
func (h *MasterHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateMasterCertificateRequest
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

	return c.JSON(http.StatusCreated, models.MasterCertificateResponse{MasterCertificate: *result})
}

// Get returns a single master certificate
func (h *MasterHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.MasterCertificateResponse{MasterCertificate: *result})
}

// Update updates a master certificate
func (h *MasterHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateMasterCertificateRequest
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

	return c.JSON(http.StatusOK, models.MasterCertificateResponse{MasterCertificate: *result})
}

// Delete soft deletes a master certificate
func (h *MasterHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
