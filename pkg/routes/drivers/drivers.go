// Package drivers serves driver CRUD, filterable by owning client.
package drivers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/driver"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo     driver.DriverRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo driver.DriverRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// Register registers driver routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists drivers, optionally filtered by client_id
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("client_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.DriverListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a driver
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateDriverRequest
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
		ActionType:  string(models.ActionDriverCreated),
		Description: fmt.Sprintf("Driver %s %s created", result.FirstName, result.LastName),
		ClientID:    &result.ClientID,
		DriverID:    &result.ID,
	})

	return c.JSON(http.StatusCreated, models.DriverResponse{Driver: *result})
}

// Get returns a single driver
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.DriverResponse{Driver: *result})
}

// Update updates a driver
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.UpdateDriverRequest
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
		ActionType:  string(models.ActionDriverUpdated),
		Description: fmt.Sprintf("Driver %s %s updated", result.FirstName, result.LastName),
		ClientID:    &result.ClientID,
		DriverID:    &result.ID,
	})

	return c.JSON(http.StatusOK, models.DriverResponse{Driver: *result})
}

// Delete soft deletes a driver
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
