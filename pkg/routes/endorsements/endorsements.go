// Package endorsements serves the endorsement workflow: CRUD, stage
// transitions, and the captured change records.
package endorsements

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/endorsement"
	"github.com/lowerzedo/ims-api/internal/repositories/policy"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo     endorsement.EndorsementRepository
	policies policy.PolicyRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo endorsement.EndorsementRepository, policies policy.PolicyRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, policies: policies, recorder: recorder}
}

// Register registers endorsement routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/advance", h.Advance)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)
}

// RegisterChanges registers the endorsement change routes
func (h *Handler) RegisterChanges(g *echo.Group) {
	g.GET("", h.ListChanges)
	g.POST("", h.CreateChange)
	g.GET("/:id", h.GetChange)
}

func respond(c echo.Context, status int, e *models.Endorsement) error {
	return c.JSON(status, models.EndorsementResponse{
		Endorsement: *e,
		ChangeTypes: e.ChangeTypes(),
	})
}

// List lists endorsements, optionally filtered by policy_id
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, c.QueryParam("policy_id"), params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.EndorsementListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a draft endorsement
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateEndorsementRequest
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

	return respond(c, http.StatusCreated, result)
}

// Get returns a single endorsement with its changes
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, result)
}

// Update updates an endorsement's editable fields
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.UpdateEndorsementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Update(ctx, actor, c.Param("id"), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, result)
}

// Delete soft deletes an endorsement
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Start begins the endorsement workflow
func (h *Handler) Start(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.StartEndorsementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.repo.Start(ctx, actor, c.Param("id"), req.Stage)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, result)
}

// Advance moves the endorsement to the given stage
func (h *Handler) Advance(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.AdvanceEndorsementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Advance(ctx, actor, c.Param("id"), req.Stage)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, result)
}

// Complete finishes the endorsement
func (h *Handler) Complete(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	result, err := h.repo.Complete(ctx, actor, c.Param("id"))
	if err != nil {
		return err
	}

	h.recordTransition(c, actor, result, models.ActionEndorsementCompleted,
		fmt.Sprintf("Endorsement %q completed", result.Name))

	return respond(c, http.StatusOK, result)
}

// Cancel cancels the endorsement
func (h *Handler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CancelEndorsementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.repo.Cancel(ctx, actor, c.Param("id"), req.Reason)
	if err != nil {
		return err
	}

	h.recordTransition(c, actor, result, models.ActionEndorsementCancelled,
		fmt.Sprintf("Endorsement %q cancelled", result.Name))

	return respond(c, http.StatusOK, result)
}

func (h *Handler) recordTransition(c echo.Context, actor string, e *models.Endorsement, action models.ActionType, description string) {
	ctx := c.Request().Context()

	entry := models.CreateActivityLogRequest{
		ActionType:    string(action),
		Description:   description,
		PolicyID:      &e.PolicyID,
		EndorsementID: &e.ID,
	}
	if p, err := h.policies.GetByID(ctx, e.PolicyID); err == nil {
		entry.ClientID = &p.ClientID
	}

	h.recorder.RecordSystem(ctx, actor, entry)
}

// CreateChange records a change on an endorsement
func (h *Handler) CreateChange(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateEndorsementChangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.CreateChange(ctx, actor, req.EndorsementID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// ListChanges lists endorsement changes filterable by endorsement, change
// type, and stage
func (h *Handler) ListChanges(c echo.Context) error {
	ctx := c.Request().Context()

	page, pageSize := routeutil.Page(c)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	filter := models.ChangeFilter{
		EndorsementID: c.QueryParam("endorsement_id"),
		ChangeType:    c.QueryParam("change_type"),
		Stage:         c.QueryParam("stage"),
		Page:          page,
		PageSize:      pageSize,
	}

	items, totalCount, err := h.repo.ListChanges(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.EndorsementChangeListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}

// GetChange returns a single endorsement change
func (h *Handler) GetChange(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetChange(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
