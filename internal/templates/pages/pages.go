// Package pages holds the site-wide pages that don't belong to a plugin.
package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/posterdesk/internal/templates/layouts"
)

//go:embed error.html
var pagesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(pagesFS, "error.html"))

type errorView struct {
	Code    int
	Title   string
	Message string
}

// ErrorPage renders a full error page for the given status code.
func ErrorPage(code int, message string) templ.Component {
	title := http.StatusText(code)
	return layouts.Base(title, templ.FromGoHTML(pageTemplates.Lookup("error"), errorView{
		Code:    code,
		Title:   title,
		Message: message,
	}))
}
