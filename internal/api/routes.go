// routes.go - Route registration helpers
// This file provides a clean way to register all dashboard routes
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/upload"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions   SessionStore
	Validator  upload.Validator
	Cookie     CookieConfig
	BackendURL string
	Version    string
	Logger     *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Auth      AuthHandler
	Dashboard DashboardHandler
	Upload    UploadHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.BackendURL),
		Auth:      NewAuthHandler(deps.Logger),
		Dashboard: NewDashboardHandler(deps.Validator, deps.Logger),
		Upload:    NewUploadHandler(deps.Logger),
	}
}

// RegisterRoutes registers every route. Pages get a browser session; the
// dashboard group additionally requires a login.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	pages := e.Group("", SessionMiddleware(deps.Sessions, deps.Cookie))
	pages.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, DashboardPath)
	})
	pages.GET("/login", handlers.Auth.HandleLoginPage)
	pages.POST("/login", handlers.Auth.HandleLogin)
	pages.GET("/register", handlers.Auth.HandleRegisterPage)
	pages.POST("/register", handlers.Auth.HandleRegister)
	pages.POST("/logout", handlers.Auth.HandleLogout)

	dash := pages.Group(DashboardPath, RequireAuth)
	dash.GET("", handlers.Dashboard.HandleDashboardPage)
	dash.GET("/state", handlers.Dashboard.HandleState)
	dash.GET("/state/msgpack", handlers.Dashboard.HandleStateMsgpack)
	dash.GET("/me", handlers.Dashboard.HandleMe)
	dash.POST("/upload", handlers.Upload.HandleUpload)
	dash.POST("/file/clear", handlers.Dashboard.HandleClearFile)
	dash.POST("/steps/:step", handlers.Dashboard.HandleRunStep)
}

// SetupMiddleware configures the error handler and page renderer
func SetupMiddleware(e *echo.Echo, renderer echo.Renderer, logger *zap.Logger, showDetails bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.HTTPErrorHandler = ErrorHandler(logger, showDetails)
	e.Renderer = renderer
}
