// Package health exposes liveness and readiness endpoints.
package health

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/internal/database"
)

type Handler struct {
	db database.DB
}

func NewHandler(db database.DB) *Handler {
	return &Handler{db: db}
}

// Register registers health routes
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/live", h.Live)
	e.GET("/health/ready", h.Ready)
}

type response struct {
	Status string `json:"status"`
}

// Health reports overall service health, including the database
func (h *Handler) Health(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, response{Status: "unhealthy"})
	}
	return c.JSON(http.StatusOK, response{Status: "healthy"})
}

// Live reports process liveness only
func (h *Handler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, response{Status: "alive"})
}

// Ready reports whether the service can take traffic
func (h *Handler) Ready(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, response{Status: "not ready"})
	}
	return c.JSON(http.StatusOK, response{Status: "ready"})
}
