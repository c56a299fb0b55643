package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

// caller returns the principal established by the Authenticate middleware.
// Routes are guarded, so a miss here means the route was wired without one.
func caller(c echo.Context) (*auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

// pageParams reads the offset (0-based page number) and limit query params.
func pageParams(c echo.Context) (ports.PageInput, error) {
	var p ports.PageInput
	err := echo.QueryParamsBinder(c).
		Int("offset", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "offset and limit must be integers")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
