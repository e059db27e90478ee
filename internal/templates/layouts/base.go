package layouts

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed base.html
var baseFS embed.FS

var baseTemplate = template.Must(template.ParseFS(baseFS, "base.html"))

// baseView is the data the page shell renders with.
type baseView struct {
	Title           string
	Body            template.HTML
	Flashes         []string
	IsAuthenticated bool
	UserID          string
}

// Base wraps a page body in the site shell: header navigation and the
// flash messages stored in ctx by the layout injector.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		return baseTemplate.ExecuteTemplate(w, "base", baseView{
			Title:           title,
			Body:            html,
			Flashes:         GetFlashes(ctx),
			IsAuthenticated: IsAuthenticated(ctx),
			UserID:          GetUserID(ctx),
		})
	})
}
