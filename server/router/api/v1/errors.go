package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code      apperrors.ErrorCode `json:"code"`
	Error     string              `json:"error"`
	RequestID string              `json:"request_id,omitempty"`
}

// writeError maps err to its status code. Internal failures are logged and
// their details kept from the client.
func writeError(c echo.Context, err error) error {
	code := apperrors.GetCodeFromError(err, apperrors.ErrCodeInternal)
	resp := ErrorResponse{Code: code, Error: err.Error()}

	reqCtx, ok := observability.FromContext(c.Request().Context())
	if ok {
		resp.RequestID = reqCtx.RequestID
	}
	if code == apperrors.ErrCodeInternal {
		if ok {
			reqCtx.Error("request failed", err, slog.String("path", c.Path()))
		} else {
			slog.Error("request failed", "path", c.Path(), "error", err)
		}
		resp.Error = "internal server error"
	}
	return c.JSON(code.HTTPStatus(), resp)
}
