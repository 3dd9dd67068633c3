package handler

import (
	"io/fs"
	"net/http"

	"shopcart-service/web"

	"github.com/labstack/echo/v4"
)

// Index serves the shopcart landing page
func Index(c echo.Context) error {
	data, err := fs.ReadFile(web.StaticFS(), "index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, data)
}

// APISpec serves the Swagger document of the items API
func APISpec(c echo.Context) error {
	data, err := web.APISpec()
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, data)
}
