package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
)

// fail logs err under op with the status it will be rendered with and
// returns it unchanged for the error handler.
func fail(l *slog.Logger, op string, err error) error {
	status, reason := apperr.Resolve(err)
	if status >= http.StatusInternalServerError {
		l.Error(op, "status", status, "reason", reason, "error", err)
	} else {
		l.Warn(op, "status", status, "reason", reason, "error", err)
	}
	return err
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid body")
	}
	return c.Validate(req)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id must be a positive integer")
	}
	return uint(id), nil
}
