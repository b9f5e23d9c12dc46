// Package config provides XML-based configuration for the dashboard server.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PaperIQDashboard"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Backend API the dashboard drives
	Backend BackendConfig `xml:"Backend"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Upload acceptance rules
	Upload UploadConfig `xml:"Upload"`

	// Browser session settings
	Session SessionConfig `xml:"Session"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// BackendConfig points at the document-processing API
type BackendConfig struct {
	BaseURL        string `xml:"BaseURL"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"` // 0 leaves requests bounded only by the caller
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	LogDirectory     string `xml:"LogDirectory"`
}

// UploadConfig contains the document picker rules
type UploadConfig struct {
	AllowedFileTypes string `xml:"AllowedFileTypes"`
	MaxUploadSizeMB  int    `xml:"MaxUploadSizeMB"`
}

// SessionConfig contains browser session settings
type SessionConfig struct {
	CookieName             string `xml:"CookieName"`
	SecureCookie           bool   `xml:"SecureCookie"`
	TimeoutMinutes         int    `xml:"TimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
	MaxSessions            int    `xml:"MaxSessions"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFile              string `xml:"LogFile"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	Production           bool   `xml:"Production"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "12M",
		},
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:8000/api",
			TimeoutSeconds: 0,
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			LogDirectory:     "./data/logs",
		},
		Upload: UploadConfig{
			AllowedFileTypes: ".pdf,.docx,.doc",
			MaxUploadSizeMB:  10,
		},
		Session: SessionConfig{
			CookieName:             "paperiq_session",
			SecureCookie:           false,
			TimeoutMinutes:         120,
			CleanupIntervalMinutes: 10,
			MaxSessions:            500,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFile:              "dashboard.log",
			EnableRequestLogging: true,
			Production:           false,
		},
	}
}

// LoadConfig loads configuration from XML file. A missing file is created
// with defaults. A .env file next to the working directory is loaded first so
// its values take part in the environment overrides.
func LoadConfig(configPath string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PaperIQ Dashboard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR moves every directory that still lives under the default data dir
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		old := c.Storage.DataDirectory
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = rebase(c.Storage.UploadsDirectory, old, dataDir)
		c.Storage.LogDirectory = rebase(c.Storage.LogDirectory, old, dataDir)
	}

	if apiURL := os.Getenv("PAPERIQ_API_URL"); apiURL != "" {
		c.Backend.BaseURL = apiURL
	}

	if level := os.Getenv("PAPERIQ_LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

func rebase(path, oldRoot, newRoot string) string {
	rel, err := filepath.Rel(oldRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.Join(newRoot, rel)
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(configDir, c.Storage.UploadsDirectory)
	}
	if !filepath.IsAbs(c.Storage.LogDirectory) {
		c.Storage.LogDirectory = filepath.Join(configDir, c.Storage.LogDirectory)
	}
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetLogFile returns the absolute path of the rotating log file
func (c *AppConfig) GetLogFile() string {
	if filepath.IsAbs(c.Advanced.LogFile) {
		return c.Advanced.LogFile
	}
	return filepath.Join(c.Storage.LogDirectory, c.Advanced.LogFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AllowedExtensions splits AllowedFileTypes into lowercase extensions with a
// leading dot.
func (c *AppConfig) AllowedExtensions() []string {
	var exts []string
	for _, e := range strings.Split(c.Upload.AllowedFileTypes, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

// MaxUploadSize returns the upload ceiling in bytes.
func (c *AppConfig) MaxUploadSize() int64 {
	return int64(c.Upload.MaxUploadSizeMB) * 1024 * 1024
}

// BackendTimeout returns the per-request backend timeout, zero for none.
func (c *AppConfig) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionTTL returns how long an idle browser session lives.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often expired sessions are swept.
func (c *AppConfig) CleanupInterval() time.Duration {
	return time.Duration(c.Session.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.LogDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
