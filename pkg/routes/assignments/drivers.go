package assignments

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/assignment"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

type DriverHandler struct {
	repo     assignment.PolicyDriverRepository
	recorder *activitylog.Recorder
}

func NewDriverHandler(repo assignment.PolicyDriverRepository, recorder *activitylog.Recorder) *DriverHandler {
	return &DriverHandler{repo: repo, recorder: recorder}
}

// Register registers policy driver routes
func (h *DriverHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists policy driver assignments, optionally filtered by policy_id
func (h *DriverHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("policy_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.PolicyDriverListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create assigns a driver to a policy
func (h *DriverHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreatePolicyDriverRequest
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
		ActionType:  string(models.ActionDriverAssigned),
		Description: "Driver assigned to policy",
		PolicyID:    &result.PolicyID,
		DriverID:    &result.DriverID,
	})

	return c.JSON(http.StatusCreated, models.PolicyDriverResponse{PolicyDriver: *result})
}

// Get returns a single policy driver assignment
func (h *DriverHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.PolicyDriverResponse{PolicyDriver: *result})
}

// Update updates a policy driver assignment
func (h *DriverHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdatePolicyDriverRequest
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

	return c.JSON(http.StatusOK, models.PolicyDriverResponse{PolicyDriver: *result})
}

// Delete soft deletes a policy driver assignment
func (h *DriverHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	existing, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}

	h.recorder.RecordSystem(ctx, actor, models.CreateActivityLogRequest{
		ActionType:  string(models.ActionDriverRemoved),
		Description: "Driver removed from policy",
		PolicyID:    &existing.PolicyID,
		DriverID:    &existing.DriverID,
	})

	return c.NoContent(http.StatusNoContent)
}
