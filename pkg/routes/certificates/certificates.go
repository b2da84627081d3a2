package certificates

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/certificate"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

type Handler struct {
	repo     certificate.CertificateRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo certificate.CertificateRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// Register registers certificate routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/document", h.Document)
}

// List lists certificates, optionally filtered by master_certificate_id
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("master_certificate_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.CertificateListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create issues a certificate and renders its document
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateCertificateRequest
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

	h.recorder.RecordSystem(ctx, actor, models.CreateActivityLogRequest{
		ActionType:  string(models.ActionCertificateCreated),
		Description: fmt.Sprintf("Certificate %s issued", result.VerificationCode),
	})

	return c.JSON(http.StatusCreated, models.CertificateResponse{Certificate: *result})
}

// Get returns a single certificate with its selections
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CertificateResponse{Certificate: *result})
}

// Update updates a certificate and re-renders its document
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.UpdateCertificateRequest
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

	h.recorder.RecordSystem(ctx, actor, models.CreateActivityLogRequest{
		ActionType:  string(models.ActionCertificateUpdated),
		Description: fmt.Sprintf("Certificate %s updated", result.VerificationCode),
	})

	return c.JSON(http.StatusOK, models.CertificateResponse{Certificate: *result})
}

// Delete soft deletes a certificate and removes its document
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Document streams the rendered certificate document
func (h *Handler) Document(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.repo.OpenDocument(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "application/pdf", data)
}
