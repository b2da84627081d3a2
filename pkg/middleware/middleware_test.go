package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowerzedo/ims-api/pkg/requestctx"
)

func TestContext(t *testing.T) {
	t.Run("should populate the actor from gateway headers", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.Header.Set(HeaderUserID, "user-42")
		req.Header.Set(HeaderUserEmail, "agent@ims.example")
		req.Header.Set(HeaderUserRole, "underwriter")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var actor requestctx.Actor
		handler := Context()(func(c echo.Context) error {
			actor = requestctx.GetActor(c.Request().Context())
			return nil
		})

		require.NoError(t, handler(c))
		assert.Equal(t, "user-42", actor.ID)
		assert.Equal(t, "agent@ims.example", actor.Email)
		assert.Equal(t, "underwriter", actor.Role)
	})

	t.Run("should generate a request id when the header is missing", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var requestID string
		handler := Context()(func(c echo.Context) error {
			requestID = requestctx.GetRequestID(c.Request().Context())
			return nil
		})

		require.NoError(t, handler(c))
		assert.NotEmpty(t, requestID)
	})

	t.Run("should keep the forwarded request id", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var requestID string
		handler := Context()(func(c echo.Context) error {
			requestID = requestctx.GetRequestID(c.Request().Context())
			return nil
		})

		require.NoError(t, handler(c))
		assert.Equal(t, "req-123", requestID)
	})
}

func TestRequireActor(t *testing.T) {
	run := func(t *testing.T, userID string) error {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		if userID != "" {
			req.Header.Set(HeaderUserID, userID)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Context()(RequireActor()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		return handler(c)
	}

	t.Run("should pass authenticated requests through", func(t *testing.T) {
		assert.NoError(t, run(t, "user-1"))
	})

	t.Run("should reject anonymous requests", func(t *testing.T) {
		err := run(t, "")
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "authentication required", httpErr.Message)
	})
}
