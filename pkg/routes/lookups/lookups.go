// Package lookups serves the shared reference tables. Reads are open; the
// seeded values are managed by migration, not by API writes.
package lookups

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/repositories/lookup"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/routes/routeutil"
)

type Handler struct {
	repo lookup.LookupRepository
}

func NewHandler(repo lookup.LookupRepository) *Handler {
	return &Handler{repo: repo}
}

// Register registers lookup routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/:kind", h.List)
	g.GET("/:kind/:id", h.Get)
}

// List returns all entries of one lookup kind
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	kind := models.LookupKind(c.Param("kind"))
	params := routeutil.ListParams(c)

	items, totalCount, err := h.repo.List(ctx, kind, params)
	if err != nil {
		return err
	}

	params.Normalize()
	return c.JSON(http.StatusOK, models.LookupListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// Get returns a single lookup entry
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	kind := models.LookupKind(c.Param("kind"))
	result, err := h.repo.GetByID(ctx, kind, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
