// Package activity serves the append-only activity feed.
package activity

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo     activitylog.ActivityLogRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo activitylog.ActivityLogRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// Register registers activity log routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
}

// Create appends a manual activity entry
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateActivityLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.recorder.Record(ctx, actor, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.ActivityLogResponse{
		ActivityLog: *result,
		ActionLabel: result.ActionType.Label(),
	})
}

// Get returns a single activity entry
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ActivityLogResponse{
		ActivityLog: *result,
		ActionLabel: result.ActionType.Label(),
	})
}

// List reads the activity feed, newest first, with reference filters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, pageSize := routeutil.Page(c)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	filter := models.ActivityFilter{
		ClientID:      c.QueryParam("client_id"),
		PolicyID:      c.QueryParam("policy_id"),
		EndorsementID: c.QueryParam("endorsement_id"),
		ActionType:    c.QueryParam("action_type"),
		PerformedBy:   c.QueryParam("performed_by"),
		Page:          page,
		PageSize:      pageSize,
	}
	if from, err := time.Parse(time.RFC3339, c.QueryParam("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.QueryParam("to")); err == nil {
		filter.To = &to
	}

	items, totalCount, err := h.repo.List(ctx, filter)
	if err != nil {
		return err
	}

	responses := make([]models.ActivityLogResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, models.ActivityLogResponse{
			ActivityLog: item,
			ActionLabel: item.ActionType.Label(),
		})
	}

	return c.JSON(http.StatusOK, models.ActivityLogListResponse{
		Items:      responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}
