package web

import (
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/dashboard"
	"github.com/paperiq/dashboard/internal/models"
)

// Pages lists the page templates. Each is rendered inside layout.html.
var Pages = []string{"login", "register", "dashboard"}

// Page is the data every template receives.
type Page struct {
	Title   string
	Notices []models.Notice
	Form    Form

	// Dashboard only
	View      *dashboard.View
	Accept    string // comma separated extensions for the file input
	MaxSizeMB int
	MaxBytes  int64
}

// Form echoes submitted values back into a re-rendered form.
type Form struct {
	Name  string
	Email string
}

// Renderer renders the embedded pages. It implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, page := range Pages {
		t, err := template.New("layout.html").ParseFS(files,
			"templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
