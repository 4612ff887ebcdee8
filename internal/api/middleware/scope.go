package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/p3biosecurity/portal/pkg/idx"
)

// KeyScope holds the browser scope ID set by Scope.
const KeyScope = "scope"

const scopeCookieMaxAge = 365 * 24 * time.Hour

// ScopeConfig configures the Scope middleware.
type ScopeConfig struct {
	// Cookie is the cookie name. Defaults to "p3_scope".
	Cookie string
	// Secure marks issued cookies as HTTPS only.
	Secure bool
}

// Scope gives every browser a stable ULID scope kept in a cookie. The
// session keys of a browser live under its scope. Missing or malformed
// cookies are replaced with a fresh scope.
func Scope(cfg ScopeConfig) echo.MiddlewareFunc {
	name := cfg.Cookie
	if name == "" {
		name = "p3_scope"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(name); err == nil && idx.Valid(ck.Value) {
				c.Set(KeyScope, ck.Value)
				return next(c)
			}

			scope := idx.New()
			c.SetCookie(&http.Cookie{
				Name:     name,
				Value:    scope,
				Path:     "/",
				MaxAge:   int(scopeCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(KeyScope, scope)
			return next(c)
		}
	}
}
