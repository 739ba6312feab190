package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/transport"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fromService converts a service error into an HTTP error carrying the
// user-facing part of its message.
func fromService(err error) *echo.HTTPError {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := strings.TrimPrefix(err.Error(), s.err.Error()+": ")
			if s.err == service.ErrInvalidRefreshToken {
				msg = "Invalid refresh token"
			}
			return echo.NewHTTPError(s.code, msg).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// fail logs the failure under the handler's logger and returns the HTTP error.
func fail(c echo.Context, handler, event string, err error) error {
	he := fromService(err)
	l := logging.FromContext(c.Request().Context()).With("handler", handler)
	if he.Code >= http.StatusInternalServerError {
		l.Error(event, "status", he.Code, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "error", err)
	}
	return he
}

// ErrorHandler renders every error as {"message": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
			msg = http.StatusText(code)
		default:
			msg = fmt.Sprint(m)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.ErrorResponse{Message: msg})
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
