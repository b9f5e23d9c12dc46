// Package web provides the embedded templates and static assets of the
// dashboard.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html static/*
var files embed.FS

// GetFileSystem returns the embedded static assets with the static folder as
// root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(files, "static")
}

// RegisterStaticRoutes serves the assets under /static/.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	e.GET("/static/*", echo.WrapHandler(fileServer))
	return nil
}

// HasEmbeddedFiles returns true if every page template is embedded.
func HasEmbeddedFiles() bool {
	for _, page := range Pages {
		if _, err := fs.Stat(files, "templates/"+page+".html"); err != nil {
			return false
		}
	}
	return true
}
