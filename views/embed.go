package views

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/yatube/yatube/internal/pkg/storage"
	"github.com/yatube/yatube/internal/pkg/utils"
)

//go:embed layouts/*.html partials/*.html posts/*.html auth/*.html misc/*.html
var FS embed.FS

// NewEngine returns the html engine over the embedded templates.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"media":      storage.MediaURL,
		"linebreaks": utils.Linebreaks,
		"truncate":   utils.Truncate,
		"gravatar":   utils.GetGravatarURL,
		"date": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"dict": dict,
	}
}

// dict builds a map from alternating keys and values for partials.
func dict(pairs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			m[key] = pairs[i+1]
		}
	}
	return m
}
