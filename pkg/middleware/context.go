package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/pkg/requestctx"
)

const (
	// HeaderUserID carries the acting user's id, set by the gateway.
	HeaderUserID = "X-User-ID"
	// HeaderUserEmail carries the acting user's email.
	HeaderUserEmail = "X-User-Email"
	// HeaderUserRole carries the acting user's role.
	HeaderUserRole = "X-User-Role"
)

// Context populates the request context with request metadata and the actor
// identity forwarded by the gateway.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := req.Context()
			ctx = requestctx.SetRequestID(ctx, requestID)
			ctx = requestctx.SetMethod(ctx, req.Method)
			ctx = requestctx.SetRoute(ctx, req.URL.Path)
			ctx = requestctx.SetRemoteIP(ctx, c.RealIP())
			ctx = requestctx.SetActor(ctx, requestctx.Actor{
				ID:    req.Header.Get(HeaderUserID),
				Email: req.Header.Get(HeaderUserEmail),
				Role:  req.Header.Get(HeaderUserRole),
			})

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
