package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/web"
	"github.com/paperiq/dashboard/internal/websession"
)

// DashboardPath is the landing page after login.
const DashboardPath = "/dashboard"

func currentSession(c echo.Context) *websession.Session {
	s, _ := c.Get(sessionContextKey).(*websession.Session)
	return s
}

// wantsJSON reports whether the caller is a script rather than a browser
// navigating between pages.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	accept := req.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) || strings.Contains(accept, mimeMsgpack)
}

// isUnauthorized reports a backend 401. A missing user id is not one.
func isUnauthorized(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized)
}

// finish answers a dashboard form post. Browsers follow post/redirect/get so
// notices render once; API clients get the payload or the mapped error.
func finish(c echo.Context, err error, status int, payload interface{}) error {
	if wantsJSON(c) {
		if err != nil {
			return FromError(err)
		}
		if payload == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(status, payload)
	}
	if err != nil && isUnauthorized(err) {
		return c.Redirect(http.StatusSeeOther, LoginPath)
	}
	return c.Redirect(http.StatusSeeOther, DashboardPath)
}

// render draws a page, draining the session's notices into it.
func render(c echo.Context, status int, name string, page web.Page) error {
	if s := currentSession(c); s != nil && page.Notices == nil {
		page.Notices = s.Dashboard.Notices().Drain()
	}
	return c.Render(status, name, page)
}
