// Package assignments serves the policy-vehicle and policy-driver link
// resources.
package assignments

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/assignment"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type VehicleHandler struct {
	repo     assignment.PolicyVehicleRepository
	recorder *activitylog.Recorder
}

func NewVehicleHandler(repo assignment.PolicyVehicleRepository, recorder *activitylog.Recorder) *VehicleHandler {
	return &VehicleHandler{repo: repo, recorder: recorder}
}

// Register registers policy vehicle routes
func (h *VehicleHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists policy vehicle assignments, optionally filtered by policy_id
func (h *VehicleHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("policy_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.PolicyVehicleListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create assigns a vehicle to a policy
func (h *VehicleHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreatePolicyVehicleRequest
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
		ActionType:  string(models.ActionVehicleAssigned),
		Description: "Vehicle assigned to policy",
		PolicyID:    &result.PolicyID,
		VehicleID:   &result.VehicleID,
	})

	return c.JSON(http.StatusCreated, models.PolicyVehicleResponse{PolicyVehicle: *result})
}

// Get returns a single policy vehicle assignment
func (h *VehicleHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.PolicyVehicleResponse{PolicyVehicle: *result})
}

// Update updates a policy vehicle assignment
func (h *VehicleHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdatePolicyVehicleRequest
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

	return c.JSON(http.StatusOK, models.PolicyVehicleResponse{PolicyVehicle: *result})
}

// Delete soft deletes a policy vehicle assignment
func (h *VehicleHandler) Delete(c echo.Context) error {
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
		ActionType:  string(models.ActionVehicleRemoved),
		Description: "Vehicle removed from policy",
		PolicyID:    &existing.PolicyID,
		VehicleID:   &existing.VehicleID,
	})

	return c.NoContent(http.StatusNoContent)
}
