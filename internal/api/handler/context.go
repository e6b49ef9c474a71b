package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/api/middleware"
)

// ctxUserID returns the identity claim injected by the auth middleware, or
// "" for anonymous requests.
func ctxUserID(c echo.Context) string {
	id, _ := c.Get(middleware.KeyUserID).(string)
	return id
}

// pathShipmentID parses a positive shipment id from the named path param.
func pathShipmentID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid shipment id")
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
