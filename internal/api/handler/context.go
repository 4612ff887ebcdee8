package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/p3biosecurity/portal/internal/api/middleware"
	"github.com/p3biosecurity/portal/internal/core/domain"
)

// ctxScope returns the browser scope set by the Scope middleware. A missing
// scope means the route was wired without it.
func ctxScope(c echo.Context) (string, error) {
	scope, _ := c.Get(middleware.KeyScope).(string)
	if scope == "" {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "missing browser scope")
	}
	return scope, nil
}

// ctxCredential returns the bearer credential accepted by the Auth
// middleware.
func ctxCredential(c echo.Context) (domain.Credential, error) {
	cred, _ := c.Get(middleware.KeyCredential).(domain.Credential)
	if cred == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return cred, nil
}
