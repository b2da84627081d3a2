package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/pkg/requestctx"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`
}

// Error renders every error as a JSON body with request and trace ids.
func Error(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()

		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("api is returning an error", zap.Error(err), zap.Int("status", code))
		}

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: requestctx.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
		})
	}
}
