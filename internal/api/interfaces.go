// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/websession"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// AuthHandler handles the login, registration and logout screens
type AuthHandler interface {
	HandleLoginPage(c echo.Context) error
	HandleLogin(c echo.Context) error
	HandleRegisterPage(c echo.Context) error
	HandleRegister(c echo.Context) error
	HandleLogout(c echo.Context) error
}

// DashboardHandler handles the dashboard page and its pipeline steps
type DashboardHandler interface {
	HandleDashboardPage(c echo.Context) error
	HandleState(c echo.Context) error
	HandleStateMsgpack(c echo.Context) error
	HandleMe(c echo.Context) error
	HandleRunStep(c echo.Context) error
	HandleClearFile(c echo.Context) error
}

// UploadHandler handles document uploads
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// SessionStore defines the interface for browser session management
// This allows mocking in tests
type SessionStore interface {
	Create() *websession.Session
	Get(id string) (*websession.Session, bool)
	Delete(id string)
}
