package posters

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/posterdesk/internal/templates/layouts"
)

//go:embed pages.html
var pagesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(pagesFS, "pages.html"))

type dashboardView struct {
	CSRFToken string
	Posters   []ViewRecord
}

// DashboardPage renders the generation form and the poster grid.
func DashboardPage(csrfToken string, posters []ViewRecord) templ.Component {
	return layouts.Base("Dashboard", templ.FromGoHTML(pageTemplates.Lookup("dashboard"), dashboardView{
		CSRFToken: csrfToken,
		Posters:   posters,
	}))
}
