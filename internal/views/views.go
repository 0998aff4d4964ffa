package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

// Layout wraps every page.
const Layout = "layouts/base"

// New builds the view engine over the embedded templates. Pass reload=true in
// development to pick up template edits without a restart.
func New(reload bool) *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFunc("date", formatDate)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	return engine
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}
