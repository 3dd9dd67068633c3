package handler

import (
	"errors"
	"fmt"
	"net/http"

	"shopcart-service/internal/apperror"
	"shopcart-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

const internalErrorMessage = "The server encountered an internal error and was unable to complete your request."

var errorTitles = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusNotFound:              "Not Found",
	http.StatusMethodNotAllowed:      "Method not Allowed",
	http.StatusUnsupportedMediaType:  "Unsupported media type",
	http.StatusInternalServerError:   "Internal Server Error",
	http.StatusRequestEntityTooLarge: "Request Entity Too Large",
}

// ErrorHandler is the echo HTTPErrorHandler. It renders application errors
// and echo's own routing errors as ErrorResponse JSON and never exposes the
// cause of a 5xx to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := logger.FromContext(c)
	status := http.StatusInternalServerError
	message := internalErrorMessage

	var appErr *apperror.Error
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusMethodNotAllowed {
		err = methodNotAllowed(c)
	}

	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.Status()
		if appErr.Kind != apperror.KindInternal {
			message = appErr.Error()
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if status < http.StatusInternalServerError {
			message = fmt.Sprint(httpErr.Message)
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("Request rejected", zap.Int("status", status), zap.String("message", message))
	}

	title, ok := errorTitles[status]
	if !ok {
		title = http.StatusText(status)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Status: status, Error: title, Message: message})
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}

// methodNotAllowed reports echo's routing 405 as an application error
func methodNotAllowed(c echo.Context) *apperror.Error {
	return apperror.MethodNotAllowed("Method %s is not allowed for %s", c.Request().Method, c.Request().URL.Path)
}
