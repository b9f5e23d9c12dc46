// middleware.go - Browser session and authentication middleware
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/websession"
)

const sessionContextKey = "paperiq.session"

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// DefaultCookieName is used when CookieConfig.Name is empty.
const DefaultCookieName = "paperiq_session"

// SessionMiddleware attaches the browser's session to the request, starting
// a new one when the cookie is missing or its session has expired.
func SessionMiddleware(store SessionStore, cfg CookieConfig) echo.MiddlewareFunc {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var s *websession.Session
			if ck, err := c.Cookie(cfg.Name); err == nil {
				s, _ = store.Get(ck.Value)
			}
			if s == nil {
				s = store.Create()
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.MaxAge.Seconds()),
				})
			}
			c.Set(sessionContextKey, s)
			return next(c)
		}
	}
}

// RequireAuth sends signed-out browsers to the login page and answers API
// clients with 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := currentSession(c)
		if s == nil || !s.Authenticated() {
			return unauthorized(c)
		}
		return next(c)
	}
}

func unauthorized(c echo.Context) error {
	if wantsJSON(c) {
		return NewUnauthorizedError("Please log in")
	}
	return c.Redirect(http.StatusSeeOther, LoginPath)
}
