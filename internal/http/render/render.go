package render

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/middleware"
	"github.com/myriadhero/tea-shop/pkg/view"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates for gin.Engine.SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"money": view.FormatMoney,
	}).ParseFS(files, "templates/*.html"))
}

// Page renders a named template with the per-request chrome filled in.
func Page(c *gin.Context, status int, name, title string, page any) {
	c.HTML(status, name, view.Layout{
		Title:     title,
		Flash:     middleware.GetFlash(c),
		CartCount: middleware.GetCartCount(c),
		RequestID: middleware.GetRequestID(c),
		Page:      page,
	})
}

func ErrorPage(c *gin.Context, status int, msg string) {
	Page(c, status, "error.html", http.StatusText(status), msg)
}
