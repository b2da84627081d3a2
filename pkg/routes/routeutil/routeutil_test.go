package routeutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestListParams(t *testing.T) {
	t.Run("should read all list parameters", func(t *testing.T) {
		c := newContext("/clients?page=2&page_size=50&search=acme&ordering=-created_at&include_inactive=true")

		params := ListParams(c)
		assert.Equal(t, 2, params.Page)
		assert.Equal(t, 50, params.PageSize)
		assert.Equal(t, "acme", params.Search)
		assert.Equal(t, "-created_at", params.Ordering)
		assert.True(t, params.IncludeInactive)
	})

	t.Run("should zero out malformed numbers", func(t *testing.T) {
		c := newContext("/clients?page=abc&page_size=-")

		params := ListParams(c)
		assert.Equal(t, 0, params.Page)
		assert.Equal(t, 0, params.PageSize)
		assert.False(t, params.IncludeInactive)
	})
}

func TestPage(t *testing.T) {
	c := newContext("/activity-logs?page=3&page_size=25")
	page, pageSize := Page(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, pageSize)
}
