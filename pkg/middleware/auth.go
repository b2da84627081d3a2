package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/pkg/requestctx"
)

// RequireActor rejects requests that carry no actor identity. Applied to every
// resource group except lookups and health.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if requestctx.GetUserID(c.Request().Context()) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
