package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"profileHub/business/profile"
	"profileHub/pkg/logger"
	"profileHub/pkg/response"
)

// ErrorHandler is the echo HTTPErrorHandler. It maps domain sentinels onto
// status codes and keeps the error envelope uniform.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, profile.ErrNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	default:
		logger.Error("unhandled request error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
	}

	if err := c.JSON(code, response.Error(strconv.Itoa(code), message, nil)); err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
