package middleware

import (
	"mime"

	"shopcart-service/internal/apperror"

	"github.com/labstack/echo/v4"
)

// RequireContentType rejects requests whose Content-Type media type is not
// contentType. Parameters such as charset are ignored.
func RequireContentType(contentType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mediaType, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
			if err != nil || mediaType != contentType {
				return apperror.UnsupportedMediaType("Content-Type must be %s", contentType)
			}
			return next(c)
		}
	}
}
