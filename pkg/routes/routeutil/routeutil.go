// Package routeutil holds the small request-parsing helpers shared by every
// route package.
package routeutil

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/requestctx"
)

// ListParams reads the common list query parameters off the request.
func ListParams(c echo.Context) models.ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return models.ListParams{
		Page:            page,
		PageSize:        pageSize,
		Search:          c.QueryParam("search"),
		Ordering:        c.QueryParam("ordering"),
		IncludeInactive: models.ParseIncludeInactive(c.QueryParam("include_inactive")),
	}
}

// Actor returns the acting user's id for the request.
func Actor(c echo.Context) string {
	return requestctx.GetUserID(c.Request().Context())
}

// Page reads a page/page_size pair for endpoints that do not use the full
// ListParams set.
func Page(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return page, pageSize
}
