package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/paperiq/dashboard/internal/api"
	"github.com/paperiq/dashboard/internal/config"
	"github.com/paperiq/dashboard/internal/logger"
	"github.com/paperiq/dashboard/internal/storage"
	"github.com/paperiq/dashboard/internal/upload"
	"github.com/paperiq/dashboard/internal/web"
	"github.com/paperiq/dashboard/internal/websession"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "paperiq-dashboard.config.xml")
	if p := os.Getenv("PAPERIQ_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Advanced.LogLevel,
		File:       cfg.GetLogFile(),
		Production: cfg.Advanced.Production,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	validator := upload.Validator{
		AllowedExtensions: cfg.AllowedExtensions(),
		MaxSize:           cfg.MaxUploadSize(),
	}
	uploadMgr := upload.NewManager(validator, fileStore, log.Named("upload"))

	// One transport for every browser session's backend client
	httpClient := &http.Client{Timeout: cfg.BackendTimeout()}

	// Browser sessions expire on their own; the cache janitor sweeps them
	sessionMgr := websession.NewManager(websession.Config{
		TTL:             cfg.SessionTTL(),
		CleanupInterval: cfg.CleanupInterval(),
		MaxSessions:     cfg.Session.MaxSessions,
		BackendURL:      cfg.Backend.BaseURL,
		HTTPClient:      httpClient,
	}, uploadMgr, log.Named("session"))

	if !web.HasEmbeddedFiles() {
		log.Fatal("page templates are missing from the binary")
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal("failed to load templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, renderer, log, !cfg.Advanced.Production)

	// Configure middleware
	e.Use(logger.RequestLogger(log.Named("http"), func(c echo.Context) bool {
		// Skip logging if disabled in config
		if !cfg.Advanced.EnableRequestLogging {
			return true
		}
		path := c.Request().URL.Path
		return path == "/api/health" || strings.HasPrefix(path, "/static/")
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}

	deps := &api.Dependencies{
		Sessions:  sessionMgr,
		Validator: validator,
		Cookie: api.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
		},
		BackendURL: cfg.Backend.BaseURL,
		Version:    Version,
		Logger:     log,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	if err := web.RegisterStaticRoutes(e); err != nil {
		log.Warn("failed to register static routes", zap.Error(err))
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PaperIQ Dashboard Server                        ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Backend:   %-46s║\n", cfg.Backend.BaseURL)
	fmt.Printf("║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}
