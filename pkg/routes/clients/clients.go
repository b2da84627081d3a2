// Package clients serves client CRUD with nested dbas, contacts, and address
// links, plus the garaging address rollup.
package clients

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/client"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

var validate = validator.New()

type Handler struct {
	repo     client.ClientRepository
	recorder *activitylog.Recorder
}

func NewHandler(repo client.ClientRepository, recorder *activitylog.Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// Register registers client routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Replace)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/garaging-addresses", h.GaragingAddresses)
}

// List lists clients
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.ClientListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Create creates a client with its nested collections
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.CreateClientRequest
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
		ActionType:  string(models.ActionClientCreated),
		Description: fmt.Sprintf("Client %q created", result.CompanyName),
		ClientID:    &result.ID,
	})

	return c.JSON(http.StatusCreated, models.ClientResponse{Client: *result})
}

// Get returns a single client with its nested collections
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ClientResponse{Client: *result})
}

// Replace updates a client, replacing supplied nested collections wholesale
func (h *Handler) Replace(c echo.Context) error {
	return h.update(c, client.SyncReplace)
}

// Patch updates a client, merging supplied nested collections by id
func (h *Handler) Patch(c echo.Context) error {
	return h.update(c, client.SyncMerge)
}

func (h *Handler) update(c echo.Context, mode client.SyncMode) error {
	ctx := c.Request().Context()
	actor := routeutil.Actor(c)

	var req models.UpdateClientRequest
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
		ActionType:  string(models.ActionClientUpdated),
		Description: fmt.Sprintf("Client %q updated", result.CompanyName),
		ClientID:    &result.ID,
	})

	return c.JSON(http.StatusOK, models.ClientResponse{Client: *result})
}

// Delete soft deletes a client and its nested collections
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// GaragingAddresses returns the distinct active garaging addresses of the
// client's policy-assigned vehicles
func (h *Handler) GaragingAddresses(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.repo.GaragingAddresses(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.AddressListResponse{
		Items:      items,
		TotalCount: len(items),
		Page:       1,
		PageSize:   len(items),
	})
}
