// Package policies serves policy CRUD with the nested financial and coverage
// collections.
package policies

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/policy"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo     policy.PolicyRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo policy.PolicyRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// Register registers policy routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Replace)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}

// List lists policies, optionally filtered by client_id
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("client_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.PolicyListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a policy with its nested financial and coverages
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreatePolicyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Create(ctx, actor, req)
	if err != nil {
		return err
	}

	h.recorder.RecordSystem(ctx, actor, models.CreateActivityLogRequest{
		ActionType:  string(models.ActionPolicyCreated),
		Description: fmt.Sprintf("Policy %s created", result.PolicyNumber),
		ClientID:    &result.ClientID,
		PolicyID:    &result.ID,
	})

	return c.JSON(http.StatusCreated, models.PolicyResponse{Policy: *result})
}

// Get returns a single policy with its nested collections
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.PolicyResponse{Policy: *result})
}

// Replace updates a policy, replacing supplied coverages wholesale
func (h *Handler) Replace(c echo.Context) error {
	return h.update(c, policy.SyncReplace)
}

// Patch updates a policy, merging supplied coverages by id
func (h *Handler) Patch(c echo.Context) error {
	return h.update(c, policy.SyncMerge)
}

func (h *Handler) update(c echo.Context, mode policy.SyncMode) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.UpdatePolicyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Update(ctx, actor, c.Param("id"), mode, req)
	if err != nil {
		return err
	}

	h.recorder.RecordSystem(ctx, actor, models.CreateActivityLogRequest{
		ActionType:  string(models.ActionPolicyUpdated),
		Description: fmt.Sprintf("Policy %s updated", result.PolicyNumber),
		ClientID:    &result.ClientID,
		PolicyID:    &result.ID,
	})

	return c.JSON(http.StatusOK, models.PolicyResponse{Policy: *result})
}

// Delete soft deletes a policy and its nested collections
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
