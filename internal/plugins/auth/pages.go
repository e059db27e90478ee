package auth

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/posterdesk/internal/templates/layouts"
)

//go:embed pages.html
var pagesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(pagesFS, "pages.html"))

// formView is the data shared by the login and signup forms.
type formView struct {
	CSRFToken string
}

// page renders one named template from pages.html inside the site shell.
func page(title, name string, data any) templ.Component {
	return layouts.Base(title, templ.FromGoHTML(pageTemplates.Lookup(name), data))
}

// LandingPage is shown to anonymous visitors at /.
func LandingPage() templ.Component {
	return page("Welcome", "landing", nil)
}

// LoginPage renders the login form.
func LoginPage(csrfToken string) templ.Component {
	return page("Log in", "login", formView{CSRFToken: csrfToken})
}

// SignupPage renders the signup form.
func SignupPage(csrfToken string) templ.Component {
	return page("Sign up", "signup", formView{CSRFToken: csrfToken})
}
